// Package gitobj provides read-only value types for the commits and tree
// changes the rule engine operates on, independent of the underlying VCS
// library's object model.
package gitobj

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitID is a 20-byte object id. Equality and ordering are byte-wise.
type CommitID plumbing.Hash

// String renders the id as 40 lowercase hex digits.
func (id CommitID) String() string {
	return plumbing.Hash(id).String()
}

// IsZero reports whether id is the zero value.
func (id CommitID) IsZero() bool {
	return plumbing.Hash(id).IsZero()
}

// EntryMode distinguishes the kind of filesystem entry a tree change refers to.
type EntryMode int

const (
	ModeUnknown EntryMode = iota
	ModeRegular
	ModeExecutable
	ModeSymlink
	ModeTree
	ModeSubmodule
)

// EntryModeFromFilemode converts a go-git filemode into our EntryMode.
func EntryModeFromFilemode(m filemode.FileMode) EntryMode {
	switch m {
	case filemode.Regular, filemode.Deprecated:
		return ModeRegular
	case filemode.Executable:
		return ModeExecutable
	case filemode.Symlink:
		return ModeSymlink
	case filemode.Dir:
		return ModeTree
	case filemode.Submodule:
		return ModeSubmodule
	default:
		return ModeUnknown
	}
}

// Signature mirrors a commit's author/committer line.
type Signature struct {
	Name             string
	Email            string
	SecondsEpoch     int64
	TimezoneOffsetMin int
}

func signatureFrom(s object.Signature) Signature {
	_, offset := s.When.Zone()
	return Signature{
		Name:              s.Name,
		Email:             s.Email,
		SecondsEpoch:      s.When.Unix(),
		TimezoneOffsetMin: offset / 60,
	}
}

// Commit is a read-only view over a VCS commit object.
type Commit struct {
	ID           CommitID
	Parents      []CommitID
	Author       Signature
	Committer    Signature
	MessageTitle []byte
	MessageBody  []byte
	Tree         plumbing.Hash

	raw *object.Commit
}

// IsMerge reports whether the commit has two or more parents.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) >= 2
}

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int {
	return len(c.Parents)
}

// Raw exposes the underlying go-git commit object for callers (e.g. the
// diff driver) that need to walk trees directly.
func (c *Commit) Raw() *object.Commit {
	return c.raw
}

// FromObject builds a Commit view from a go-git commit object, splitting the
// message at the first LF into title and body per the data model.
func FromObject(oc *object.Commit) *Commit {
	parents := make([]CommitID, 0, oc.NumParents())
	for _, h := range oc.ParentHashes {
		parents = append(parents, CommitID(h))
	}

	msg := []byte(oc.Message)
	title, body := splitMessage(msg)

	return &Commit{
		ID:           CommitID(oc.Hash),
		Parents:      parents,
		Author:       signatureFrom(oc.Author),
		Committer:    signatureFrom(oc.Committer),
		MessageTitle: title,
		MessageBody:  body,
		Tree:         oc.TreeHash,
		raw:          oc,
	}
}

func splitMessage(msg []byte) (title, body []byte) {
	for i, b := range msg {
		if b == '\n' {
			return msg[:i], msg[i+1:]
		}
	}
	return msg, nil
}

// TreeChange is the tagged variant produced by the diff driver for each path
// that differs between a commit's parent tree and its own tree. Each change
// is exactly one of the concrete types below. Rename tracking is disabled
// by policy (see DiffDriver), so Rewrite is never
// constructed here but remains part of the data model for callers that may
// re-enable rename detection against the underlying library directly.
type TreeChange interface {
	Path() string
	isTreeChange()
}

// Addition is a path present in the commit's tree but not its parent's.
type Addition struct {
	PathValue string
	EntryMode EntryMode
	NewID     plumbing.Hash
}

func (a Addition) Path() string { return a.PathValue }
func (Addition) isTreeChange()  {}

// Deletion is a path present in the parent's tree but not the commit's.
type Deletion struct {
	PathValue string
	EntryMode EntryMode
	OldID     plumbing.Hash
}

func (d Deletion) Path() string { return d.PathValue }
func (Deletion) isTreeChange()  {}

// Modification is a path present in both trees with a different blob id or mode.
type Modification struct {
	PathValue string
	OldMode   EntryMode
	NewMode   EntryMode
	OldID     plumbing.Hash
	NewID     plumbing.Hash
}

func (m Modification) Path() string { return m.PathValue }
func (Modification) isTreeChange()  {}

// Rewrite is a rename/copy, unused while rename tracking is disabled.
type Rewrite struct {
	OldPath string
	NewPath string
	OldMode EntryMode
	NewMode EntryMode
	OldID   plumbing.Hash
	NewID   plumbing.Hash
}

func (r Rewrite) Path() string { return r.NewPath }
func (Rewrite) isTreeChange()  {}

// BlobReader reads blob content by id. The diff driver's repository backs
// this for rules (like the whitespace-only-change rule) that need to
// inspect content beyond the change metadata.
type BlobReader interface {
	ReadBlob(id plumbing.Hash) ([]byte, error)
}

// String renders a TreeChange for logging and test fixtures.
func String(tc TreeChange) string {
	switch v := tc.(type) {
	case Addition:
		return fmt.Sprintf("A %s", v.PathValue)
	case Deletion:
		return fmt.Sprintf("D %s", v.PathValue)
	case Modification:
		return fmt.Sprintf("M %s", v.PathValue)
	case Rewrite:
		return fmt.Sprintf("R %s -> %s", v.OldPath, v.NewPath)
	default:
		return "?"
	}
}
