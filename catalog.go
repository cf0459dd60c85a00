package rq

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/rq/mask"
	"github.com/bodgit/rq/packed"
	"github.com/bodgit/rq/raster"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a sqlite database of encoded images keyed by the SHA-1 of the
// source file and the parameters used to encode it.
type Catalog struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Key identifies one encoding of a source file
type Key struct {
	SHA1      string
	Mask      mask.Mask
	MaxWidth  int
	MaxHeight int
}

func (k Key) normalize() Key {
	if k.MaxWidth <= 0 || k.MaxWidth > raster.MaxDimension {
		k.MaxWidth = raster.MaxDimension
	}
	if k.MaxHeight <= 0 || k.MaxHeight > raster.MaxDimension {
		k.MaxHeight = raster.MaxDimension
	}
	return k
}

// Entry describes an image held in the catalog
type Entry struct {
	ID     int64
	SHA1   string
	Name   string
	Mask   string
	Width  int
	Height int
	// Size is the size of the RQ file, Stored is the compressed size in
	// the catalog
	Size   int
	Stored int
}

func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, mask TEXT NOT NULL, max_width INTEGER NOT NULL, max_height INTEGER NOT NULL, name TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL, UNIQUE(sha1, mask, max_width, max_height))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Catalog{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

func (c *Catalog) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// Add stores p under k unless an image is already stored there, returning
// the row ID either way
func (c *Catalog) Add(k Key, name string, p *packed.Image) (int64, error) {
	k = k.normalize()

	var id int64
	switch err := c.db.QueryRow("SELECT id FROM image WHERE sha1 = ? AND mask = ? AND max_width = ? AND max_height = ?", k.SHA1, k.Mask.String(), k.MaxWidth, k.MaxHeight).Scan(&id); err {
	case sql.ErrNoRows:
		b, err := p.MarshalBinary()
		if err != nil {
			return 0, err
		}
		result, err := c.db.Exec("INSERT OR IGNORE INTO image (sha1, mask, max_width, max_height, name, width, height, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", k.SHA1, k.Mask.String(), k.MaxWidth, k.MaxHeight, name, p.Width, p.Height, c.enc.EncodeAll(b, nil))
		if err != nil {
			return 0, err
		}
		// Lost a race with another writer, use their row
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return c.Add(k, name, p)
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Find returns the image stored under k, or nil if there isn't one
func (c *Catalog) Find(k Key) (*packed.Image, error) {
	k = k.normalize()

	var data []byte
	switch err := c.db.QueryRow("SELECT data FROM image WHERE sha1 = ? AND mask = ? AND max_width = ? AND max_height = ?", k.SHA1, k.Mask.String(), k.MaxWidth, k.MaxHeight).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		p := new(packed.Image)
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, err
	}
}

// List returns every entry in the catalog ordered by name
func (c *Catalog) List() ([]Entry, error) {
	rows, err := c.db.Query("SELECT id, sha1, name, mask, width, height, length(data) FROM image ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SHA1, &e.Name, &e.Mask, &e.Width, &e.Height, &e.Stored); err != nil {
			return nil, err
		}
		e.Size = packed.HeaderSize + 2*e.Width*e.Height
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
