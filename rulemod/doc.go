// Rule-triggered post removal for a subreddit.
//
// A moderator, allow-listed user, or user whose flair score clears a
// configured threshold can remove a post by replying to it with a trigger
// comment like "!rule 2". The engine resolves "2" against the removal reason
// catalog moderators keep in the subreddit's toolbox wiki page, removes the
// post, and applies whatever that reason prescribes: post flair, a
// distinguished-sticky locked explanation comment, or both.
//
// This package re-exports the most commonly used types from the sub-packages.
package rulemod
