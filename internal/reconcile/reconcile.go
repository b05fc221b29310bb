// Package reconcile merges partial gallery records obtained from independent
// sources into a single record that is at least as complete as either input.
//
// The rules are deterministic and per-field: a field the incoming record
// knows overwrites the target's value; a field it does not know leaves the
// target untouched. Two fields deviate: Invalid is OR-monotonic, and Tags are
// replaced wholesale when the incoming map is non-empty.
package reconcile

import (
	"errors"
	"fmt"
	"log"

	"galleryhub/pkg/models"
)

// ErrIdentityMismatch is returned by strict reconcilers when asked to merge
// records that do not share a (gid, token) identity.
var ErrIdentityMismatch = errors.New("reconcile: identity mismatch")

var errNilTarget = errors.New("reconcile: nil target")

// Reconciler merges gallery records. It holds no state besides its
// configuration; a single Reconciler may be shared freely, but concurrent
// merges into the same target record must be serialized by the caller.
type Reconciler struct {
	strict bool
	logger *log.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStrictIdentity makes Merge fail with ErrIdentityMismatch instead of
// logging and merging anyway. The identity check runs before any field is
// written, so a failed strict merge never half-updates the target.
func WithStrictIdentity() Option {
	return func(r *Reconciler) { r.strict = true }
}

// WithLogger sets the sink for identity-mismatch warnings.
// Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Merge folds incoming into target. Every field incoming knows overwrites
// target's value; fields incoming does not know keep target's value, so the
// result is never less complete than either input. The incoming record is
// not modified, and target's identity is never touched.
//
// A nil incoming is a no-op. Records with different identities are merged
// anyway after a logged warning; callers are expected to only pair records
// they believe describe the same gallery. WithStrictIdentity turns that
// warning into an error.
func (r *Reconciler) Merge(target, incoming *models.GalleryInfo) error {
	if target == nil {
		return errNilTarget
	}
	if incoming == nil {
		return nil
	}

	if !target.SameEntity(incoming) {
		if r.strict {
			return fmt.Errorf("%w: (%d, %q) vs (%d, %q)",
				ErrIdentityMismatch, target.GID, target.Token, incoming.GID, incoming.Token)
		}
		r.logger.Printf("[reconcile] merging records with different identity: (%d, %q) vs (%d, %q)",
			target.GID, target.Token, incoming.GID, incoming.Token)
	}

	if incoming.HasTitle() {
		target.Title = incoming.Title
	}
	if incoming.HasTitleJpn() {
		target.TitleJpn = incoming.TitleJpn
	}
	if incoming.HasCover() {
		target.Cover = incoming.Cover
	}
	if incoming.HasCoverURL() {
		target.CoverURL = incoming.CoverURL
	}
	if incoming.HasCoverRatio() {
		target.CoverRatio = incoming.CoverRatio
	}
	if incoming.HasCategory() {
		target.Category = incoming.Category
	}
	if incoming.HasPosted() {
		target.Posted = incoming.Posted
	}
	if incoming.HasUploader() {
		target.Uploader = incoming.Uploader
	}
	if incoming.HasRating() {
		target.Rating = incoming.Rating
	}
	if incoming.HasLanguage() {
		target.Language = incoming.Language
	}
	if incoming.HasFavoriteSlot() {
		target.FavoriteSlot = incoming.FavoriteSlot
	}
	if incoming.Invalid {
		// monotonic: never cleared by a merge
		target.Invalid = true
	}
	if incoming.HasArchiverKey() {
		target.ArchiverKey = incoming.ArchiverKey
	}
	if incoming.HasPages() {
		target.Pages = incoming.Pages
	}
	if incoming.HasSize() {
		target.Size = incoming.Size
	}
	if incoming.HasTorrents() {
		target.TorrentCount = incoming.TorrentCount
	}
	if !incoming.Tags.IsEmpty() {
		// all-or-nothing: the incoming map replaces target's, deep-copied so
		// the two records never alias tag storage
		target.Tags = incoming.Tags.Clone()
	}

	return nil
}

// MergeFromList scans candidates in order and merges the first record that
// shares target's identity; later matches are ignored. A nil list, nil
// elements and a missing match are all no-ops.
func (r *Reconciler) MergeFromList(target *models.GalleryInfo, candidates []*models.GalleryInfo) error {
	if target == nil {
		return errNilTarget
	}
	for _, c := range candidates {
		if target.SameEntity(c) {
			return r.Merge(target, c)
		}
	}
	return nil
}

var defaultReconciler = New()

// Merge runs the default permissive reconciler.
func Merge(target, incoming *models.GalleryInfo) error {
	return defaultReconciler.Merge(target, incoming)
}

// MergeFromList runs the default permissive reconciler.
func MergeFromList(target *models.GalleryInfo, candidates []*models.GalleryInfo) error {
	return defaultReconciler.MergeFromList(target, candidates)
}
