package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/abhisek/geogem/internal/store"
)

// SeedBlock is one block of a seed word list.
type SeedBlock struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Words       []SeedWord `json:"words"`
}

// SeedWord is one word of a seed word list.
type SeedWord struct {
	Name            string `json:"name"`
	Transliteration string `json:"transliteration"`
	Translation     string `json:"translation"`
	Example         string `json:"example"`
}

// Seed loads a JSON array of blocks into the word bank. Blocks whose slug
// already exists are skipped. It returns the number of words added.
func Seed(ctx context.Context, st *store.Store, r io.Reader) (int, error) {
	var blocks []SeedBlock
	if err := json.NewDecoder(r).Decode(&blocks); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}

	bank := st.WordBank()
	added := 0
	for _, sb := range blocks {
		slug := sb.Slug
		if slug == "" {
			slug = store.Slugify(sb.Name)
		}
		if _, err := bank.BlockBySlug(ctx, slug); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return added, err
		}

		b, err := bank.CreateBlock(ctx, store.Block{Slug: slug, Name: sb.Name, Description: sb.Description})
		if err != nil {
			return added, err
		}
		for _, sw := range sb.Words {
			_, err := bank.AddWord(ctx, b.ID, store.Word{
				Name:            sw.Name,
				Transliteration: sw.Transliteration,
				Translation:     sw.Translation,
				Example:         sw.Example,
			})
			if err != nil {
				return added, fmt.Errorf("seed %s/%s: %w", slug, sw.Name, err)
			}
			added++
		}
	}
	return added, nil
}
