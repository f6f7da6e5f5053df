package filesystem

import (
	"path/filepath"
	"slices"
	"strings"
)

const unknownVolume = "unknown"

// VolumeResolver labels paths with the volume they live on, for metrics. The
// deepest matching root wins, so a clips volume mounted inside the media
// volume is reported separately.
type VolumeResolver struct {
	roots []volumeRoot
}

type volumeRoot struct {
	dir  string
	name string
}

// NewVolumeResolver takes a map of volume name to root directory.
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	vr := &VolumeResolver{}
	for name, dir := range volumes {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		vr.roots = append(vr.roots, volumeRoot{dir: filepath.Clean(dir), name: name})
	}
	slices.SortFunc(vr.roots, func(a, b volumeRoot) int {
		return len(b.dir) - len(a.dir)
	})
	return vr
}

// Resolve returns the volume name for path, or "unknown".
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return unknownVolume
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return unknownVolume
	}
	for _, root := range vr.roots {
		if within(root.dir, abs) {
			return root.name
		}
	}
	return unknownVolume
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the resolver used when a RetryConfig has none.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}
