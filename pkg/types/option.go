package types

// Option is one entry of the flat settings bag.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Well-known option keys.
const (
	OptionVersion       = "version"
	OptionSyncActive    = "syncActive"
	OptionSyncURL       = "syncUrl"
	OptionNotifications = "notifications"
	OptionFirstStart    = "firstStart"
	OptionLastOpenBoard = "lastOpenBoard"
)

// DefaultOptions are the option rows seeded on first run, in insertion order.
// lastOpenBoard is absent on purpose: it is written when a board is opened.
var DefaultOptions = []Option{
	{Key: OptionVersion, Value: ""},
	{Key: OptionSyncActive, Value: "false"},
	{Key: OptionSyncURL, Value: ""},
	{Key: OptionNotifications, Value: "false"},
	{Key: OptionFirstStart, Value: "true"},
}

// Theme is the display theme preference.
type Theme string

// Supported themes.
const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme converts s to a Theme. An empty string selects ThemeSystem.
// Returns ErrInvalidTheme for unknown values.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case "":
		return ThemeSystem, nil
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(s), nil
	}
	return "", ErrInvalidTheme
}
