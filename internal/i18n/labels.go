// Package i18n serves the localized labels the journal pipeline shows in
// place of masked or failed content, and localized weekday names.
package i18n

import (
	"fmt"
	"strconv"

	"github.com/SimoHua/symphonyx/internal/times"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

const (
	ContentBlockLabel        = "contentBlockLabel"
	ContentRenderFailedLabel = "contentRenderFailedLabel"
	DiscussionContentLabel   = "discussionContentLabel"
	ArticleTitleBlockLabel   = "articleTitleBlockLabel"
)

var defaults = map[string]map[string]string{
	"en": {
		ContentBlockLabel:        "This content has been blocked",
		ContentRenderFailedLabel: "This content is temporarily unavailable",
		DiscussionContentLabel:   "This is a private discussion",
		ArticleTitleBlockLabel:   "This post has been blocked",
		"weekDay1":               "Monday",
		"weekDay2":               "Tuesday",
		"weekDay3":               "Wednesday",
		"weekDay4":               "Thursday",
		"weekDay5":               "Friday",
		"weekDay6":               "Saturday",
		"weekDay7":               "Sunday",
	},
	"zh": {
		ContentBlockLabel:        "该内容已被屏蔽",
		ContentRenderFailedLabel: "该内容暂时无法显示",
		DiscussionContentLabel:   "这是一个私密讨论",
		ArticleTitleBlockLabel:   "该帖已被屏蔽",
		"weekDay1":               "星期一",
		"weekDay2":               "星期二",
		"weekDay3":               "星期三",
		"weekDay4":               "星期四",
		"weekDay5":               "星期五",
		"weekDay6":               "星期六",
		"weekDay7":               "星期日",
	},
}

var supported = []language.Tag{language.English, language.Chinese}

// Labels is an immutable, locale-bound label table; safe for concurrent use.
type Labels struct {
	locale string
	trans  ut.Translator
}

// New picks the closest supported locale for tag (e.g. "zh-CN" -> "zh") and
// loads its defaults, then applies overrides on top.
func New(tag string, overrides map[string]string) (*Labels, error) {
	locale := match(tag)

	uni := ut.New(en.New(), translators()...)
	trans, _ := uni.GetTranslator(locale)

	merged := make(map[string]string, len(defaults[locale])+len(overrides))
	for k, v := range defaults[locale] {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	for k, v := range merged {
		if err := trans.Add(k, v, true); err != nil {
			return nil, fmt.Errorf("add label %s: %w", k, err)
		}
	}
	return &Labels{locale: locale, trans: trans}, nil
}

func translators() []locales.Translator {
	return []locales.Translator{en.New(), zh.New()}
}

func match(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return "en"
	}
	_, idx, conf := language.NewMatcher(supported).Match(t)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func (l *Labels) Locale() string { return l.locale }

// Get returns the label for key, or the key itself when it is unknown.
func (l *Labels) Get(key string) string {
	s, err := l.trans.T(key)
	if err != nil || s == "" {
		return key
	}
	return s
}

// WeekDayName returns the localized name of a 1..7 weekday index, falling
// back to the English name when the locale has none.
func (l *Labels) WeekDayName(i int) string {
	key := "weekDay" + strconv.Itoa(i)
	if s := l.Get(key); s != key {
		return s
	}
	return times.WeekDayName(i)
}
