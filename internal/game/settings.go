package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/words"
)

const (
	DefaultRounds   = 6
	DefaultDrawTime = 60

	// a custom list must be long enough that offers don't repeat every turn
	minCustomWords = 5
	// every turn offers three distinct words
	minWordList = 3
)

// Limits bounds host supplied settings. Zero disables a bound.
type Limits struct {
	MaxRounds   int
	MaxDrawTime int
}

// DefaultSettings returns the settings used when a host sends none.
func DefaultSettings() models.Settings {
	list, _ := words.Lookup(words.DefaultCategory)
	return models.Settings{
		Rounds:       DefaultRounds,
		DrawTime:     DefaultDrawTime,
		WordCategory: words.DefaultCategory,
		WordList:     list,
	}
}

// boundsError describes the accepted range. A zero max means there is no upper bound.
func boundsError(field, unit string, max int) error {
	if max > 0 {
		return fmt.Errorf("%w: %s must be between 1 and %d%s", ErrInvalidSettings, field, max, unit)
	}
	return fmt.Errorf("%w: %s must be at least 1", ErrInvalidSettings, field)
}

// ResolveSettings applies req on top of fallback. Absent numeric fields keep the
// fallback value; an absent category with no list keeps the fallback words.
func ResolveSettings(req models.SettingsRequest, fallback models.Settings, limits Limits) (models.Settings, error) {
	out := fallback.Clone()

	if req.Rounds != nil {
		n := *req.Rounds
		if n < 1 || (limits.MaxRounds > 0 && n > limits.MaxRounds) {
			return models.Settings{}, boundsError("rounds", "", limits.MaxRounds)
		}
		out.Rounds = n
	}
	if req.DrawTime != nil {
		n := *req.DrawTime
		if n < 1 || (limits.MaxDrawTime > 0 && n > limits.MaxDrawTime) {
			return models.Settings{}, boundsError("draw time", " seconds", limits.MaxDrawTime)
		}
		out.DrawTime = n
	}

	category, list, err := resolveWords(req.WordCategory, req.WordList)
	if err != nil {
		return models.Settings{}, err
	}
	if category != "" {
		out.WordCategory = category
		out.WordList = list
	}

	if len(out.WordList) < minWordList {
		return models.Settings{}, fmt.Errorf("%w: word list needs at least %d words", ErrInvalidSettings, minWordList)
	}
	return out, nil
}

// resolveWords returns an empty category when the request doesn't touch the word source.
func resolveWords(category string, custom []string) (string, []string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	custom = words.Normalize(custom)

	if category == "" {
		if len(custom) == 0 {
			return "", nil, nil
		}
		category = words.CustomCategory
	}

	if category != words.CustomCategory {
		if list, ok := words.Lookup(category); ok {
			return category, list, nil
		}
	}

	if len(custom) < minCustomWords {
		return "", nil, fmt.Errorf("%w: a custom word list needs at least %d words", ErrInvalidSettings, minCustomWords)
	}
	return words.CustomCategory, custom, nil
}
