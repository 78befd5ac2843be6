package perms

type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "🔴 CRITICAL - Full admin access"
	case RiskHigh:
		return "🟠 HIGH - Multiple dangerous permissions"
	case RiskMedium:
		return "🟡 MEDIUM - Risky or moderation permissions"
	default:
		return "🟢 LOW - Safe permission set"
	}
}

var (
	highRisk   = []string{"manage_server", "manage_roles", "ban_members", "manage_webhooks"}
	mediumRisk = []string{"kick_members", "manage_messages", "manage_channels", "timeout_members"}
)

func countSet(bits int64, names []string) int {
	n := 0
	for _, name := range names {
		if bits&byName[name].Bit != 0 {
			n++
		}
	}
	return n
}

// Risk grades a permission integer by the dangerous capabilities it grants.
func Risk(bits int64) RiskLevel {
	if bits&byName["administrator"].Bit != 0 {
		return RiskCritical
	}
	high := countSet(bits, highRisk)
	switch {
	case high >= 2:
		return RiskHigh
	case high == 1, countSet(bits, mediumRisk) >= 2:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summary describes what a permission integer lets the holder do.
func Summary(bits int64) []string {
	if bits&byName["administrator"].Bit != 0 {
		return []string{"🚨 ADMINISTRATOR - has ALL permissions"}
	}

	var out []string
	if countSet(bits, []string{"manage_server", "manage_channels", "manage_roles"}) > 0 {
		out = append(out, "🔧 Can manage server/channels/roles")
	}
	if countSet(bits, []string{"kick_members", "ban_members", "manage_messages", "timeout_members"}) > 0 {
		out = append(out, "🛡️ Has moderation capabilities")
	}
	if countSet(bits, []string{"connect", "speak", "mute_members"}) > 0 {
		out = append(out, "🔊 Has voice channel access")
	}
	if len(out) == 0 {
		out = append(out, "📝 Basic utility permissions")
	}
	return out
}
