package repository

import "strings"

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

// normalizeProfile trims the profile name and falls back to DefaultProfile.
func normalizeProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
