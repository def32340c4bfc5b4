package locale

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-errors/errors"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/plugland/plugd/updating"
	"golang.org/x/text/language"
)

// Translations resolves the daemon's user-facing messages by key,
// falling back to the embedded English defaults.
type Translations struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
}

// Compile time check for protocol compatibility
var _ updating.Localizer = (*Translations)(nil)

// NewTranslations loads the embedded default messages plus any
// active.*.toml files found in dir. dir may be empty.
func NewTranslations(lang string, dir string) (*Translations, error) {
	if lang == "" {
		return nil, errors.New("no language given")
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	bundle.MustParseMessageFileBytes([]byte(defaultMessages), "default.en.toml")

	if dir != "" {
		files, err := filepath.Glob(filepath.Join(dir, "active.*.toml"))
		if err != nil {
			return nil, errors.Errorf("Could not list translation files: %v", err)
		}

		for _, file := range files {
			if _, err := bundle.LoadMessageFile(file); err != nil {
				return nil, errors.Errorf("Could not load translation file %v: %v", file, err)
			}
		}
	}

	return &Translations{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, lang),
	}, nil
}

// Text resolves a message key. Unknown keys resolve to the key itself so
// a missing translation never hides the state it stands for.
func (t *Translations) Text(key string) string {
	localized, err := t.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: key},
	})
	if err != nil {
		return key
	}

	return localized
}

var defaultMessages = `
[CHECKING]
other = "Checking for updates"

[UPDATING]
other = "Updating"

[DOWNLOADING]
other = "Downloading"

[VERIFYING]
other = "Verifying"

[INSTALLING]
other = "Installing"

[RESTARTING]
other = "Updates installed, restarting"

[FAILED]
other = "Some updates failed"

[REBOOT]
other = "Confirm to restart"

[CONTINUE]
other = "Confirm to continue"
`
