package service

import (
	"regexp"
)

var emojiPattern = regexp.MustCompile(`:([a-z0-9_+\-]+):`)

// emojis are the shortcodes with an image under {static}/emoji/graphics.
var emojis = toSet(
	"+1", "-1", "100", "angry", "astonished", "blush", "broken_heart", "clap",
	"confused", "cry", "disappointed", "dizzy_face", "fearful", "fire", "flushed",
	"grin", "grinning", "heart", "heart_eyes", "hushed", "innocent", "joy",
	"kissing_heart", "laughing", "mask", "muscle", "neutral_face", "ok_hand",
	"pensive", "pray", "rage", "relaxed", "relieved", "rocket", "scream", "sleeping",
	"smile", "smiley", "smirk", "sob", "stuck_out_tongue", "sunglasses", "sweat",
	"sweat_smile", "tada", "thinking", "triumph", "unamused", "v", "wave", "weary",
	"wink", "worried", "yum",
)

func toSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Emojify replaces known ":name:" shortcodes with emoji images. Unknown
// shortcodes are left as typed.
func (s *ContentService) Emojify(text string) string {
	return emojiPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		if _, ok := emojis[name]; !ok {
			return m
		}
		return "<img alt='" + name + "' class='emoji' src='" + s.static +
			"/emoji/graphics/" + name + ".png' title='" + name + "'>"
	})
}
