package sfx

import (
	"strings"
)

// ExportConstants is used to export all currently loaded SFX,
// in a format that can be used to generate go constants.
// Separators ('-', '_', '.', ' ') are dropped and the following letter is
// upper-cased: "ui-click" becomes "UiClick".
func (l *Library) ExportConstants() map[string]string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	export := make(map[string]string, len(l.effects))
	for id := range l.effects {
		var formattedConstant strings.Builder
		capsNext := true
		for _, c := range string(id) {
			if c == '-' || c == '_' || c == '.' || c == ' ' {
				capsNext = true
				continue
			}
			if capsNext {
				formattedConstant.WriteString(strings.ToUpper(string(c)))
				capsNext = false
			} else {
				formattedConstant.WriteRune(c)
			}
		}
		export[formattedConstant.String()] = string(id)
	}
	return export
}
