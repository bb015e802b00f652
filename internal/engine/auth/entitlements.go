package auth

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Feature is a plan-gated capability name.
type Feature string

const (
	FeatureDataRetention     Feature = "data-retention"
	FeatureAnnotationQueues  Feature = "annotation-queues"
	FeatureCustomRoles       Feature = "custom-roles"
	FeatureSSO               Feature = "sso"
	FeatureAuditLogs         Feature = "audit-logs"
	FeatureUnlimitedProjects Feature = "unlimited-projects"
)

var planRank = map[PlanTier]int{
	PlanFree:       0,
	PlanPro:        1,
	PlanTeam:       2,
	PlanEnterprise: 3,
}

// Minimum tier that unlocks each feature.
var featureMinPlan = map[Feature]PlanTier{
	FeatureDataRetention:     PlanPro,
	FeatureAnnotationQueues:  PlanPro,
	FeatureCustomRoles:       PlanTeam,
	FeatureAuditLogs:         PlanTeam,
	FeatureUnlimitedProjects: PlanTeam,
	FeatureSSO:               PlanEnterprise,
}

// EntitlementGate maps (plan, feature) to allowed/denied. Pure and uncached:
// plan changes take effect immediately even when the surrounding scope was
// served from a stale cache entry. An unknown feature name is a programming
// error; the gate panics in development and denies in production.
type EntitlementGate struct {
	development bool
}

func NewEntitlementGate(environment string) *EntitlementGate {
	return &EntitlementGate{development: environment == "development"}
}

func (g *EntitlementGate) IsEntitled(plan PlanTier, feature Feature) bool {
	minPlan, ok := featureMinPlan[feature]
	if !ok {
		if g.development {
			panic(fmt.Sprintf("entitlement check for unknown feature %q", feature))
		}
		log.Error().Str("feature", string(feature)).Msg("entitlement check for unknown feature, denying")
		return false
	}

	rank, ok := planRank[plan]
	if !ok {
		// Unknown tiers (bad data, future tiers) get free-tier treatment.
		log.Warn().Str("plan", string(plan)).Msg("unknown plan tier in entitlement check")
		rank = planRank[PlanFree]
	}

	return rank >= planRank[minPlan]
}

// Snapshot evaluates every known feature for a plan. Used by the scope
// introspection endpoint; computed fresh on every call.
func (g *EntitlementGate) Snapshot(plan PlanTier) map[Feature]bool {
	out := make(map[Feature]bool, len(featureMinPlan))
	for feature := range featureMinPlan {
		out[feature] = g.IsEntitled(plan, feature)
	}
	return out
}
