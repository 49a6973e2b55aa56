package lifecycle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kilnpkg/kiln/recipe"
)

const metadataFile = ".kiln-build.json"

// Metadata records what produced the contents of a build tree. It is
// written once the build step succeeds.
type Metadata struct {
	RunID     string          `json:"run_id"`
	Recipe    string          `json:"recipe"`
	Settings  recipe.Settings `json:"settings"`
	Options   map[string]bool `json:"options"`
	SkipTest  bool            `json:"skip_test"`
	BuildTime time.Time       `json:"build_time"`
}

func (l *Lifecycle) writeMetadata() error {
	id := l.rcp.Identity()
	md := Metadata{
		RunID:     l.runID,
		Recipe:    id.Name + "/" + id.Version,
		Settings:  l.settings,
		Options:   l.options.Map(),
		SkipTest:  l.cfg.Conf.SkipTest,
		BuildTime: time.Now(),
	}
	data, err := json.MarshalIndent(&md, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.buildDir, metadataFile), data, 0o644)
}

// ReadMetadata loads the build metadata from a build tree.
func ReadMetadata(buildDir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, metadataFile))
	if err != nil {
		return nil, err
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, err
	}
	return &md, nil
}
