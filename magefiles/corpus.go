// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Corpus groups the corpus maintenance targets.
type Corpus mg.Namespace

// Import loads a publication catalog CSV or record file into the corpus.
func (Corpus) Import(path string) error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "corpus", "import", path)
}

// Fetch retrieves PubMed Central metadata for records that lack it.
func (Corpus) Fetch() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "corpus", "fetch")
}

// Embed computes missing embeddings.
func (Corpus) Embed() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "corpus", "embed")
}

// Refresh fetches metadata, embeds new records, and prints coverage.
func (Corpus) Refresh() {
	mg.SerialDeps(Corpus.Fetch, Corpus.Embed, Corpus.Stats)
}

// Stats prints abstract, keyword, and embedding coverage.
func (Corpus) Stats() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "corpus", "stats")
}

// Export writes the corpus to corpus/index/export.yaml.
func (Corpus) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "corpus", "export")
}
