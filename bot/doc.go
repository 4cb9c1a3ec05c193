// Package bot is the conversation facade over the matcher: it turns a user
// message into a chat reply.
//
// A [Bot] owns a catalog, a [match.Matcher] built for it, and a
// [suggest.Suggester] used when nothing matches. Replies come in three
// kinds:
//
//   - [KindIntro]: the greeting, with the quick chips as suggestions
//   - [KindAnswer]: the matched intent's answer and links
//   - [KindFallback]: "I'm not sure. Try one of these:" with suggestions
//     ranked by full-text search, or the quick chips when search finds
//     nothing
//
// # Usage
//
//	b, err := bot.New(bot.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	reply, err := b.Ask(ctx, "show me your cv")
//
// # Reloading
//
// [Bot.Reload] swaps in a new catalog atomically. Calls in flight finish
// against the catalog they started with. [Watcher] reloads automatically
// when a catalog file changes on disk.
package bot
