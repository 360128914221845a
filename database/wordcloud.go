package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// WordFrequency is one word cloud entry.
type WordFrequency struct {
	Word      string    `json:"word"`
	Frequency int       `json:"frequency"`
	Updated   time.Time `json:"updated"`
}

// WordCloudMetadata records when and over what the cloud was last built.
type WordCloudMetadata struct {
	LastCalculation    time.Time `json:"lastCalculation"`
	TotalDocsProcessed int       `json:"totalDocsProcessed"`
	TotalWordsIndexed  int       `json:"totalWordsIndexed"`
	Version            int       `json:"version"`
}

// stopWords are common English words excluded from the word cloud
var stopWords = func() map[string]bool {
	const common = `the a an and or but in on at to for of as by is
		was are were be this that with from they we you it have has had
		will would could should can may must shall their there here what
		where when who which how all each every both few more most other
		some such than too very`
	m := make(map[string]bool)
	for _, w := range strings.Fields(common) {
		m[w] = true
	}
	return m
}()

// wordPattern matches words made of letters with optional inner hyphens
// or apostrophes
var wordPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z'-]*[a-zA-Z]\b|\b[a-zA-Z]+\b`)

var numericOnly = regexp.MustCompile(`^\d+$`)

// CountWords tokenizes text and counts how often each word appears.
// Words shorter than three characters, stop words and bare numbers are
// dropped.
func CountWords(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) < 3 || stopWords[word] || numericOnly.MatchString(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// documentWordCounts counts words over a document's text and name together,
// so filenames surface in the cloud even for documents without a text layer
func documentWordCounts(doc *Document) map[string]int {
	return CountWords(doc.FullText + " " + doc.Name)
}

// UpdateWordFrequencies folds one document's words into the stored
// frequencies. Called incrementally as documents are ingested.
func (p *PostgresDB) UpdateWordFrequencies(docID string) error {
	doc, err := p.GetDocumentByULID(docID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO word_frequencies (word, frequency, last_updated)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (word) DO UPDATE SET
			frequency = word_frequencies.frequency + EXCLUDED.frequency,
			last_updated = CURRENT_TIMESTAMP
	`
	for word, count := range documentWordCounts(doc) {
		if _, err := tx.Exec(upsert, word, count); err != nil {
			return fmt.Errorf("upsert word frequency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit word frequencies: %w", err)
	}
	return nil
}

// RecalculateAllWordFrequencies rebuilds the word cloud from scratch over
// every stored document. Runs after cleanup jobs and on demand.
func (p *PostgresDB) RecalculateAllWordFrequencies() error {
	Logger.Info("Starting full word cloud recalculation")

	if _, err := p.db.Exec("TRUNCATE TABLE word_frequencies"); err != nil {
		return fmt.Errorf("clear word frequencies: %w", err)
	}

	docs, err := p.GetAllDocuments()
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	Logger.Info("Processing documents for word cloud", "count", len(docs))

	totals := make(map[string]int)
	for i := range docs {
		for word, count := range documentWordCounts(&docs[i]) {
			totals[word] += count
		}
	}
	Logger.Info("Inserting word frequencies", "unique_words", len(totals))

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO word_frequencies (word, frequency, last_updated)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for word, count := range totals {
		if _, err := stmt.Exec(word, count); err != nil {
			return fmt.Errorf("insert word frequency: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit word frequencies: %w", err)
	}

	const updateMetadata = `
		UPDATE word_cloud_metadata SET
			last_full_calculation = CURRENT_TIMESTAMP,
			total_documents_processed = $1,
			total_words_indexed = $2,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`
	if _, err := p.db.Exec(updateMetadata, len(docs), len(totals)); err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}

	Logger.Info("Word cloud recalculation completed", "docs", len(docs), "words", len(totals))
	return nil
}

// GetTopWords returns the most frequent words, ties ordered alphabetically.
func (p *PostgresDB) GetTopWords(limit int) ([]WordFrequency, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := p.db.Query(`
		SELECT word, frequency, last_updated
		FROM word_frequencies
		ORDER BY frequency DESC, word ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top words: %w", err)
	}
	defer rows.Close()

	// Empty slice rather than nil so the API marshals [] instead of null
	words := make([]WordFrequency, 0)
	for rows.Next() {
		var wf WordFrequency
		if err := rows.Scan(&wf.Word, &wf.Frequency, &wf.Updated); err != nil {
			return nil, fmt.Errorf("scan word frequency: %w", err)
		}
		words = append(words, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return words, nil
}

// GetWordCloudMetadata reads the singleton metadata row.
func (p *PostgresDB) GetWordCloudMetadata() (*WordCloudMetadata, error) {
	var meta WordCloudMetadata
	var lastCalc sql.NullTime

	err := p.db.QueryRow(`
		SELECT last_full_calculation, total_documents_processed,
		       total_words_indexed, version
		FROM word_cloud_metadata
		WHERE id = 1
	`).Scan(&lastCalc, &meta.TotalDocsProcessed, &meta.TotalWordsIndexed, &meta.Version)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	if lastCalc.Valid {
		meta.LastCalculation = lastCalc.Time
	}
	return &meta, nil
}
