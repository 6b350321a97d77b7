package label

// Kind says what sort of buildable unit a label identifies. The string
// value doubles as the directory name used for tag tracking on disk.
type Kind string

// The label kinds.
const (
	KindCheckout   Kind = "checkout"
	KindPackage    Kind = "package"
	KindDeployment Kind = "deployment"

	// KindSynthetic labels exist purely to give the dependency mechanism
	// something to order; they never correspond to a unit on disk.
	KindSynthetic Kind = "synth"
)

// Tag names a lifecycle state within a kind's vocabulary.
type Tag string

// Checkout tags, in lifecycle order.
const (
	TagCheckedOut       Tag = "checked_out"
	TagPulled           Tag = "pulled"
	TagUpToDate         Tag = "up_to_date"
	TagChangesCommitted Tag = "changes_committed"
	TagChangesPushed    Tag = "changes_pushed"
)

// Package tags, in lifecycle order.
const (
	TagPreConfig     Tag = "preconfig"
	TagConfigured    Tag = "configured"
	TagBuilt         Tag = "built"
	TagInstalled     Tag = "installed"
	TagPostInstalled Tag = "postinstalled"
)

// Out-of-band tags shared by checkouts and packages. They sit outside the
// lifecycle order: requesting one never implies any other tag.
const (
	TagClean     Tag = "clean"
	TagDistClean Tag = "distclean"
)

// Deployment tags. These are deliberately independent of each other:
// applying deployment instructions may need different privilege than
// producing the deployment, so neither implies the other.
const (
	TagDeployed            Tag = "deployed"
	TagInstructionsApplied Tag = "instructionsapplied"
)

// Synthetic tags.
const (
	// TagLoaded marks a dynamically loaded unit (the build description),
	// so it is only evaluated once.
	TagLoaded Tag = "loaded"

	// TagTemporary marks a call-scoped label that must never be stored in
	// any persistent graph or tag store.
	TagTemporary Tag = "temporary"
)

// lifecycles holds the ordered tag progression per kind. Tags absent from
// a kind's lifecycle may still be valid for it (see vocabularies) but are
// unordered: Satisfies treats them as equality-only.
var lifecycles = map[Kind][]Tag{
	KindCheckout: {TagCheckedOut, TagPulled, TagUpToDate, TagChangesCommitted, TagChangesPushed},
	KindPackage:  {TagPreConfig, TagConfigured, TagBuilt, TagInstalled, TagPostInstalled},
}

// vocabularies holds every tag valid for each kind.
var vocabularies = map[Kind]map[Tag]bool{
	KindCheckout: {
		TagCheckedOut: true, TagPulled: true, TagUpToDate: true,
		TagChangesCommitted: true, TagChangesPushed: true,
		TagClean: true, TagDistClean: true,
	},
	KindPackage: {
		TagPreConfig: true, TagConfigured: true, TagBuilt: true,
		TagInstalled: true, TagPostInstalled: true,
		TagClean: true, TagDistClean: true,
	},
	KindDeployment: {
		TagDeployed: true, TagInstructionsApplied: true,
	},
	KindSynthetic: {
		TagLoaded: true, TagTemporary: true,
	},
}

// ValidKind reports whether k is a recognized label kind.
func ValidKind(k Kind) bool {
	_, ok := vocabularies[k]
	return ok
}

// ValidTag reports whether t belongs to kind k's tag vocabulary.
func ValidTag(k Kind, t Tag) bool {
	return vocabularies[k][t]
}

// Lifecycle returns the ordered tag progression for k, or nil when the
// kind has no ordered lifecycle (deployments, synthetics).
func Lifecycle(k Kind) []Tag {
	return lifecycles[k]
}

// tagIndex returns t's position in k's lifecycle, or -1 when t is an
// unordered (out-of-band) tag for that kind.
func tagIndex(k Kind, t Tag) int {
	for i, lt := range lifecycles[k] {
		if lt == t {
			return i
		}
	}
	return -1
}

// Satisfies reports whether a unit currently at tag have also satisfies a
// request for tag want, for kind k. A lifecycle tag satisfies itself and
// every earlier lifecycle tag. Unordered tags (clean, deployment tags,
// synthetics) satisfy only themselves.
func Satisfies(k Kind, have, want Tag) bool {
	if have == want {
		return true
	}
	hi, wi := tagIndex(k, have), tagIndex(k, want)
	if hi < 0 || wi < 0 {
		return false
	}
	return hi >= wi
}
