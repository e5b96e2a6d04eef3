package settings

import (
	"fmt"
	"regexp"
)

// permPattern admits the canonical R/W/X/P ordering with any subset present.
var permPattern = regexp.MustCompile(`^R?W?X?P?$`)

// Permissions returns the access permission string declared for an
// interface via the "<interface>_access" key under the instance scope.
// Absent values default to full access ("RWXP"); present values must match
// the canonical R?W?X?P? form.
func Permissions(store *Store, instanceName, interfaceName string) (string, error) {
	perm := store.String(instanceName, interfaceName+"_access", "")
	if perm == "" {
		return "RWXP", nil
	}
	if !permPattern.MatchString(perm) {
		return "", fmt.Errorf("invalid permissions attribute %s.%s_access: %q", instanceName, interfaceName, perm)
	}
	return perm, nil
}
