package chunkstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sanchul-dev/sanchul/pkg/chunkstore"
)

// FuzzLoadPiece feeds arbitrary bytes through the piece-file parser. It must
// never panic; malformed content surfaces as an error or an empty row list.
//
// Run with: go test -fuzz=FuzzLoadPiece -fuzztime=5m ./pkg/chunkstore/...
func FuzzLoadPiece(f *testing.F) {
	seeds := [][]byte{
		[]byte(``),
		[]byte(`[]`),
		[]byte(`[{}]`),
		[]byte(`[{"mark":"--","code":"C1","list":"전선관","qty":"2*4"}]`),
		[]byte(`[{"mark":"~*","list":"x","qty":"==="}]`),
		[]byte(`{broken`),
		[]byte(`null`),
		[]byte(`[null]`),
		[]byte(`[{"qty":123}]`),
		[]byte("\x00\x01\x02"),
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fuzz"+chunkstore.PieceExt)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Skip()
		}
		s := chunkstore.New(dir)
		rows, err := s.LoadPiece(path)
		if err == nil {
			for _, r := range rows {
				_ = r.IsBlank()
			}
		}
	})
}
