package shell

import (
	"os/exec"
	"path/filepath"

	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Which = Which

// Which resolves name on PATH and returns its absolute path.
func Which(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrToolNotFound, name), "cause", err.Error())
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil //nolint:nilerr // LookPath already found it
	}
	return abs, nil
}
