package model

import "strings"

// SnakeCase converts a PascalCase or camelCase name to snake_case.
// Runs of capitals stay together: "VPC" -> "vpc", "CidrBlock" ->
// "cidr_block", "EnableDNSSupport" -> "enable_dns_support".
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper && i > 0 {
			prev := runes[i-1]
			prevLower := prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower && prev >= 'A' && prev <= 'Z' {
				b.WriteByte('_')
			}
		}
		if isUpper {
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
