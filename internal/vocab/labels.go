package vocab

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLanguage is the language the clinic staff works in.
var DefaultLanguage = language.Russian

var labels = map[language.Tag]map[string]string{
	language.Russian: {
		"unit.piece":      "шт",
		"unit.milliliter": "мл",
		"unit.gram":       "г",
		"unit.pack":       "уп",
		"unit.ampoule":    "амп",
		"role.admin":      "Администратор",
		"role.head_nurse": "Старшая медсестра",
		"role.staff":      "Сотрудник",
	},
	language.English: {
		"unit.piece":      "pcs",
		"unit.milliliter": "ml",
		"unit.gram":       "g",
		"unit.pack":       "pack",
		"unit.ampoule":    "amp",
		"role.admin":      "Administrator",
		"role.head_nurse": "Head nurse",
		"role.staff":      "Staff",
	},
}

func init() {
	if err := registerLabels(); err != nil {
		panic(err)
	}
}

func registerLabels() error {
	for tag, msgs := range labels {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("label %s %s: %w", tag, key, err)
			}
		}
	}
	return nil
}

// Supported returns the languages that have a label catalog.
func Supported() []language.Tag {
	return []language.Tag{language.Russian, language.English}
}
