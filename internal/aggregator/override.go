package aggregator

import (
	"regexp"
	"sort"
	"strings"

	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/models"
)

// overrideCommandRe matches both the canonical `/cerberus override` command
// and its `/council override` alias, grounded in overrides.py's
// OVERRIDE_COMMAND_RE.
var overrideCommandRe = regexp.MustCompile(`(?im)^/(?:cerberus|council) override\s+sha=([0-9a-f]{7,40})\s*$`)
var reasonLineRe = regexp.MustCompile(`(?im)^Reason:\s*(.+)$`)

// ParseOverrideCommand extracts an Override from one PR comment body. It
// returns ok=false if the body contains no override command.
func ParseOverrideCommand(body, actor string) (models.Override, bool) {
	m := overrideCommandRe.FindStringSubmatch(body)
	if m == nil {
		return models.Override{}, false
	}
	reason := ""
	if rm := reasonLineRe.FindStringSubmatch(body); rm != nil {
		reason = strings.TrimSpace(rm[1])
	}
	return models.Override{SHA: m[1], Reason: reason, Actor: actor}, true
}

// ActorPermission is the caller's resolved repository permission, as
// reported by the PRState capability (e.g. gh api's "permission" field).
type ActorPermission string

const (
	PermissionNone     ActorPermission = "none"
	PermissionRead     ActorPermission = "read"
	PermissionWrite    ActorPermission = "write"
	PermissionMaintain ActorPermission = "maintain"
	PermissionAdmin    ActorPermission = "admin"
)

// IsAuthorized reports whether actor, holding permission and possibly being
// the PR author, satisfies policy.
func IsAuthorized(policy config.OverridePolicy, actor, prAuthor string, permission ActorPermission) bool {
	switch policy {
	case config.PolicyPRAuthor:
		return strings.EqualFold(actor, prAuthor)
	case config.PolicyMaintainersOnly:
		return permission == PermissionMaintain || permission == PermissionAdmin
	case config.PolicyWriteAccess:
		return permission == PermissionWrite || permission == PermissionMaintain || permission == PermissionAdmin
	default:
		return permission == PermissionWrite || permission == PermissionMaintain || permission == PermissionAdmin
	}
}

// ResolveOverrides walks comments in chronological order and returns the
// first authorized override whose sha is a prefix of headSHA and whose
// Reason is non-empty, per the first-authorized-wins precedence rule. Later
// authorized overrides targeting the same head commit are ignored; comments
// that fail authorization, lack a reason, or target a stale sha never apply.
func ResolveOverrides(comments []models.Comment, headSHA, prAuthor string, policy config.OverridePolicy, permissionOf func(actor string) ActorPermission) *models.AppliedOverride {
	sorted := make([]models.Comment, len(comments))
	copy(sorted, comments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	for _, c := range sorted {
		ov, ok := ParseOverrideCommand(c.Body, c.Author)
		if !ok {
			continue
		}
		if !strings.HasPrefix(headSHA, ov.SHA) {
			continue
		}
		if ov.Reason == "" {
			continue
		}
		if !IsAuthorized(policy, ov.Actor, prAuthor, permissionOf(ov.Actor)) {
			continue
		}
		return &models.AppliedOverride{SHA: headSHA, Reason: ov.Reason, Actor: ov.Actor}
	}
	return nil
}
