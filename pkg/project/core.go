package project

import (
	"path/filepath"

	"github.com/sanchul-dev/sanchul/pkg/chunkstore"
	"github.com/sanchul-dev/sanchul/pkg/config"
	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/mapping"
	"github.com/sanchul-dev/sanchul/pkg/refdict"
	"github.com/sanchul-dev/sanchul/pkg/sheet"
)

// CoreContext wires the process-wide stores and session state into one
// place. Hosts construct it once at startup and tear it down on exit; all
// sheet operations reach the stores through it.
type CoreContext struct {
	Config config.Config

	Dict     *refdict.Dictionary
	Lighting *refdict.LightingStore
	Mappings *mapping.Store
	Chunks   *chunkstore.Store

	Clipboard *sheet.Clipboard
	State     *State

	stopWatch func()
}

// NewCoreContext builds the context for a project. The unsaved-session
// chunk directory is purged, the dictionary loads read-only, and the manual
// mapping files go under an external-change watcher.
func NewCoreContext(cfg config.Config, projectName string) *CoreContext {
	if cfg.LogFile != "" {
		if err := debug.SetLogFile(cfg.LogFile); err != nil {
			debug.Log("log file %s unavailable: %v", cfg.LogFile, err)
		}
	}

	chunks := chunkstore.New(cfg.DataRoot)
	chunks.PurgeUnsavedSession()

	state := NewState(cfg.DataRoot, projectName, cfg.Debounce())

	projectMapping := filepath.Join(state.projectDir(), "manual_mapping.json")
	mappings := mapping.NewStore(cfg.Stores.MappingFile, projectMapping)

	c := &CoreContext{
		Config:    cfg,
		Dict:      refdict.Load(cfg.Stores.DictionaryDB),
		Lighting:  refdict.OpenLightingStore(cfg.Stores.LightingDB),
		Mappings:  mappings,
		Chunks:    chunks,
		Clipboard: &sheet.Clipboard{},
		State:     state,
	}
	c.stopWatch = mappings.WatchExternal(func() {
		debug.Log("manual mappings reloaded from disk")
	})
	return c
}

// ResolveCode maps a list text to a catalog code: manual mappings first
// (project scope over original), then an exact-or-prefix dictionary hit.
// Suitable as a sheet.CodeResolver.
func (c *CoreContext) ResolveCode(list string) (string, bool) {
	if code, ok := c.Mappings.Resolve(list); ok {
		return code, true
	}
	if e := c.Dict.FindExactOrPrefix(list); e != nil && e.Code != "" {
		return e.Code, true
	}
	return "", false
}

// OpenSubDetail opens the unit-price popup model for an item with the
// context's stores and resolver wired in.
func (c *CoreContext) OpenSubDetail(item string) *sheet.SubDetailModel {
	m := sheet.OpenSubDetail(c.Chunks, c.State.ProjectName(), item, c.Dict, nil)
	m.SetResolver(c.ResolveCode)
	return m
}

// Teardown force-flushes all state and releases the watcher and log file.
func (c *CoreContext) Teardown() {
	if c.stopWatch != nil {
		c.stopWatch()
	}
	c.State.Close()
	debug.CloseLogFile()
}
