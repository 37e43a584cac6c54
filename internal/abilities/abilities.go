package abilities

import "slices"

// Ability strings embedded in tokens at mint time. Checking one is a slice
// scan over the token's snapshot, never a database read.
const (
	AdminAccess     = "admin-access"
	PremiumFeatures = "premium-features"
)

// Baseline abilities every authenticated account receives.
var baseline = []string{
	"access-workouts",
	"manage-profile",
	"social-features",
	"ml-access",
	"tracking-access",
	"planning-access",
}

// Role names with an ability attached beyond the baseline. Abilities come
// from this fixed mapping only; role-permission grants feed the separate
// HasPermission check path, not tokens.
var roleAbilities = map[string]string{
	"admin":   AdminAccess,
	"premium": PremiumFeatures,
}

// ServiceDefaults are granted to service tokens when the caller names none.
var ServiceDefaults = []string{"read-data", "write-data"}

// ForRoles computes the ability snapshot for an account holding the given
// role names.
func ForRoles(roleNames []string) []string {
	out := make([]string, 0, len(baseline)+2)
	out = append(out, baseline...)
	for _, name := range roleNames {
		if ability, ok := roleAbilities[name]; ok && !slices.Contains(out, ability) {
			out = append(out, ability)
		}
	}
	return out
}

// Contains reports whether a token's ability snapshot carries the ability.
func Contains(snapshot []string, ability string) bool {
	return slices.Contains(snapshot, ability)
}
