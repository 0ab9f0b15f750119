package index

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the content tree and brings the index up to date:
//   - new/changed files are parsed, rendered, and upserted
//   - files removed from disk are deleted from the index
//   - malformed documents are excluded and recorded as problems without
//     aborting the rest of the build
//
// Files are processed in path order so that when two documents claim the
// same slug, the earlier path deterministically wins.
func Sync(db *DB, store storage.Provider, r Renderer, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexDocument(db, r, m.Path, data); err != nil {
			// Fail-soft: record the diagnostic, drop any stale row, keep going.
			_ = db.RecordProblem(m.Path, err.Error())
			_ = db.DeleteDocument(m.Path)
			logger.Warn("sync: excluded", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			_ = db.ClearProblem(m.Path)
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				_ = db.ClearProblem(p)
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	// Drop diagnostics whose source file is gone.
	if problems, err := db.Problems(); err == nil {
		for _, prob := range problems {
			if _, ok := disk[prob.Path]; !ok {
				_ = db.ClearProblem(prob.Path)
			}
		}
	}

	return nil
}

// indexDocument parses and renders data, then upserts it into the DB.
func indexDocument(db *DB, r Renderer, path string, data []byte) error {
	doc, err := content.Parse(path, data)
	if err != nil {
		return err
	}
	html, err := r.Render([]byte(doc.Body))
	if err != nil {
		return err
	}

	row := DocumentRow{
		Path:     doc.Path,
		Slug:     doc.Slug,
		Layout:   string(doc.Layout),
		Title:    doc.Title,
		Tags:     doc.Tags,
		Icon:     doc.Icon,
		Order:    doc.Order,
		Checksum: doc.Checksum,
	}
	if !doc.Date.IsZero() {
		d := doc.Date
		row.Date = &d
	}
	row.UpdatedAt = time.Now()

	err = db.UpsertDocument(row, doc.Body, html)
	if errors.Is(err, apperr.ErrDuplicatePath) {
		// Slug ownership must not depend on build history: the
		// lexically smaller path always wins, so evict a larger-path
		// holder that got there first and retry.
		holder, herr := db.GetDocument(doc.Slug)
		if herr == nil && doc.Path < holder.Path {
			_ = db.RecordProblem(holder.Path, fmt.Sprintf("duplicate slug %q: superseded by %s", doc.Slug, doc.Path))
			_ = db.DeleteDocument(holder.Path)
			err = db.UpsertDocument(row, doc.Body, html)
		}
	}
	return err
}
