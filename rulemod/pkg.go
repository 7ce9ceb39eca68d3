package rulemod

import (
	"github.com/remora-mod/remora/rulemod/countstore"
	"github.com/remora-mod/remora/rulemod/engine"
)

type Engine = engine.Engine
type EventContext = engine.EventContext
type Settings = engine.Settings
type Disposition = engine.Disposition

type Notifier = engine.Notifier
type SlackNotifier = engine.SlackNotifier

type AuthzReason = engine.AuthzReason

var (
	AuthzModerator   = engine.AuthzModerator
	AuthzAllowListed = engine.AuthzAllowListed
	AuthzScoreMet    = engine.AuthzScoreMet
	AuthzDenied      = engine.AuthzDenied

	PeriodTotal = countstore.PeriodTotal
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour
)
