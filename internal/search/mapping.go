package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping describes item documents.
//
// Titles, creators and series are stemmed English text with term vectors
// for highlighting. Publisher is split into words but not stemmed.
// Identifiers, category, tags, genres and barcodes are single keyword
// terms for exact filters and facets. Year and timestamps are numeric.
func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()

	for _, name := range []string{"name", "creators", "series"} {
		doc.AddFieldMappingsAt(name, textField(en.AnalyzerName, true, true))
	}
	// Descriptions are long; they are searched but never returned.
	doc.AddFieldMappingsAt("description", textField(en.AnalyzerName, false, false))
	doc.AddFieldMappingsAt("publisher", textField(simple.Name, true, false))

	doc.AddFieldMappingsAt("id", textField(keyword.Name, false, false))
	doc.AddFieldMappingsAt("barcode", textField(keyword.Name, false, false))
	for _, name := range []string{"item_id", "category", "subcategory", "genres"} {
		doc.AddFieldMappingsAt(name, textField(keyword.Name, true, false))
	}
	doc.AddFieldMappingsAt("tags", textField(keyword.Name, true, true))

	for _, name := range []string{"year", "created_at", "updated_at"} {
		num := bleve.NewNumericFieldMapping()
		num.Store = true
		doc.AddFieldMappingsAt(name, num)
	}

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = en.AnalyzerName
	m.DefaultMapping = doc
	return m
}

func textField(analyzer string, store, termVectors bool) *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = analyzer
	f.Store = store
	f.IncludeTermVectors = termVectors
	return f
}
