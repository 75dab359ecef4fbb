package implementation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"
)

const (
	documentExt = ".md"
	tempExt     = ".tmp"
)

// FileDocumentRepository stores each document as <root>/<collection>/<key>.md.
// Metadata and ids are not persisted; CreatedAt is the file modification time.
type FileDocumentRepository struct {
	root string
}

func NewFileDocumentRepository(root string) contract.DocumentRepository {
	return &FileDocumentRepository{root: root}
}

func (r *FileDocumentRepository) dir(collection string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(collection))
	if collection == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid collection %q", collection)
	}
	return filepath.Join(r.root, clean), nil
}

func (r *FileDocumentRepository) path(collection, key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	dir, err := r.dir(collection)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, key+documentExt), nil
}

// Put writes through a temp file and rename so readers never see a partial document.
func (r *FileDocumentRepository) Put(ctx context.Context, doc *entity.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := r.path(doc.Collection, doc.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), doc.Key+documentExt+".*"+tempExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move document into place: %w", err)
	}

	if info, err := os.Stat(target); err == nil && doc.CreatedAt.IsZero() {
		doc.CreatedAt = info.ModTime()
	}
	return nil
}

func (r *FileDocumentRepository) ListAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	dir, err := r.dir(collection)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*entity.Document{}, nil
		}
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	docs := make([]*entity.Document, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		// keys may start with a dot; only the extension separates documents from in-flight temp files
		if e.IsDir() || filepath.Ext(name) != documentExt {
			continue
		}
		doc, err := r.read(collection, filepath.Join(dir, name), strings.TrimSuffix(name, documentExt))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *FileDocumentRepository) FindOne(ctx context.Context, collection, key string) (*entity.Document, error) {
	target, err := r.path(collection, key)
	if err != nil {
		return nil, err
	}
	doc, err := r.read(collection, target, key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *FileDocumentRepository) read(collection, path, key string) (*entity.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &entity.Document{
		Collection: collection,
		Key:        key,
		Content:    string(content),
		CreatedAt:  info.ModTime(),
	}, nil
}

// DeleteCollection removes the collection's documents; nested collections are left alone.
func (r *FileDocumentRepository) DeleteCollection(ctx context.Context, collection string) error {
	dir, err := r.dir(collection)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != documentExt {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (r *FileDocumentRepository) Locate(collection, key string) string {
	if p, err := r.path(collection, key); err == nil {
		return p
	}
	return filepath.Join(r.root, collection, key+documentExt)
}
