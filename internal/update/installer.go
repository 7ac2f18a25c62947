package update

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// BackupSuffix is appended to the executable path to form the
// single-generation backup of the previously running binary.
const BackupSuffix = ".bak"

// Installer swaps a fully downloaded staging file into place over the
// running executable, keeping the prior binary as a backup. At most one
// staging file and one backup exist at a time; the backup is always the
// immediately-prior running binary.
type Installer struct {
	execPath   string
	backupPath string
}

// NewInstaller creates an installer for the given running executable path.
func NewInstaller(execPath string) *Installer {
	return &Installer{
		execPath:   execPath,
		backupPath: execPath + BackupSuffix,
	}
}

// BackupPath returns the path of the backup binary.
func (i *Installer) BackupPath() string {
	return i.backupPath
}

// Install moves the staged binary over the running executable:
// a stale backup is deleted, the running binary becomes the backup, and
// the staged file takes its place. If the second rename fails the
// backup is restored so the running path is never left absent. The swap
// is not crash-atomic as a whole; the restore narrows the window but a
// hard crash between renames can still require manual recovery.
// Requires write permission in the executable's directory; failures are
// ErrInstall and the application keeps running the old binary.
func (i *Installer) Install(stagedPath string) error {
	if err := checkWritePermission(i.execPath); err != nil {
		return fmt.Errorf("%w: %v", ErrInstall, err)
	}

	// Single-generation backup: drop the previous one first.
	if _, err := os.Stat(i.backupPath); err == nil {
		if err := os.Remove(i.backupPath); err != nil {
			return fmt.Errorf("%w: remove stale backup: %v", ErrInstall, err)
		}
	}

	if err := os.Rename(i.execPath, i.backupPath); err != nil {
		return fmt.Errorf("%w: back up current binary: %v", ErrInstall, err)
	}

	if err := os.Rename(stagedPath, i.execPath); err != nil {
		// Put the old binary back so the running path is not left absent.
		if restoreErr := os.Rename(i.backupPath, i.execPath); restoreErr != nil {
			log.Error("restore after failed install", "err", restoreErr)
		}
		return fmt.Errorf("%w: install new binary: %v", ErrInstall, err)
	}

	if err := os.Chmod(i.execPath, 0755); err != nil {
		return fmt.Errorf("%w: set executable permission: %v", ErrInstall, err)
	}

	log.Info("installed update", "path", i.execPath, "backup", i.backupPath)
	return nil
}

// Rollback restores the backup binary over the running executable.
func (i *Installer) Rollback() error {
	if _, err := os.Stat(i.backupPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: no backup at %s", ErrInstall, i.backupPath)
	}

	if err := os.Rename(i.backupPath, i.execPath); err != nil {
		return fmt.Errorf("%w: restore backup: %v", ErrInstall, err)
	}

	if err := os.Chmod(i.execPath, 0755); err != nil {
		return fmt.Errorf("%w: set executable permission: %v", ErrInstall, err)
	}

	log.Info("rolled back to previous binary", "path", i.execPath)
	return nil
}

// ExecutablePath returns the symlink-resolved path of the running binary.
func ExecutablePath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return resolved, nil
}

// checkWritePermission verifies the process can write alongside path.
func checkWritePermission(path string) error {
	probe := filepath.Join(filepath.Dir(path), ".keyden-write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return err
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return nil
}
