package nginx

import (
	"fmt"
	"strings"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

// ACLFileName is the include file the generated geo block is written to.
// The main nginx config includes it from conf.d.
const ACLFileName = "acl.conf"

// Access values published through the $n8n_access geo variable. Location
// blocks compare against these to apply differing trust rules per level.
const (
	accessDenied   = "0"
	accessInternal = "1"
	accessExternal = "2"
)

// Generate renders the geo directive for the given ranges. Output is
// deterministic for a given input: ranges appear in the order supplied and
// nothing else varies, so re-generating without a mutation yields an
// identical file.
func Generate(ranges []models.IPRange) string {
	var b strings.Builder
	b.WriteString("# Managed access-control ranges. Do not edit; changes are overwritten.\n")
	b.WriteString("geo $n8n_access {\n")
	b.WriteString(fmt.Sprintf("    default %s;\n", accessDenied))

	for _, r := range ranges {
		access := accessInternal
		if r.AccessLevel == models.AccessLevelExternal {
			access = accessExternal
		}
		if r.Description != "" {
			b.WriteString(fmt.Sprintf("    %s %s; # %s\n", r.CIDR, access, sanitizeComment(r.Description)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s;\n", r.CIDR, access))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// sanitizeComment strips characters that would terminate or confuse an
// nginx comment, keeping descriptions from breaking the generated file.
func sanitizeComment(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
