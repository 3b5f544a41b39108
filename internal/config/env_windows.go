//go:build windows

package config

// mapEnvKey lets $(HOSTNAME) and $(HOME) in backup paths resolve on Windows.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "HOME":
		return "USERPROFILE"
	}
	return key
}
