package dictionary

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/wordduel/internal/dependencies/random"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/storage"
)

// Service provides target selection and guess validation over a word list
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	list   []string // Sorted, so a given Intn result always picks the same word
	loaded bool
}

// New creates a new dictionary Service
func New(storage storage.Storage, rng random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  rng,
		logger:  logger,
		words:   make(map[string]struct{}),
	}
}

// Normalize lowercases and trims a word before lookup
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// IsWellFormed returns true if word is exactly WordLength ASCII letters
func IsWellFormed(word string) bool {
	if len(word) != model.WordLength {
		return false
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line)
// and persists the accepted words to storage.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := Normalize(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := s.loadWords(words); err != nil {
		return err
	}

	// Save to storage for future use
	return s.storage.SaveDictionaryWords(ctx, s.Words())
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	set := make(map[string]struct{}, len(words))
	skipped := 0
	for _, w := range words {
		word := Normalize(w)
		if !IsWellFormed(word) {
			skipped++
			continue
		}
		set[word] = struct{}{}
	}

	if len(set) == 0 {
		return model.ErrDictionaryNotLoaded
	}

	list := make([]string, 0, len(set))
	for word := range set {
		list = append(list, word)
	}
	sort.Strings(list)

	s.mu.Lock()
	s.words = set
	s.list = list
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("dictionary loaded",
		slog.Int("words", len(list)),
		slog.Int("skipped", skipped),
	)
	return nil
}

// IsValidWord checks if a word is well formed and exists in the dictionary
func (s *Service) IsValidWord(word string) bool {
	word = Normalize(word)
	if !IsWellFormed(word) {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[word]
	return ok
}

// RandomWord picks a target word
func (s *Service) RandomWord() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || len(s.list) == 0 {
		return "", model.ErrDictionaryNotLoaded
	}
	return s.list[s.random.Intn(len(s.list))], nil
}

// Words returns the loaded words in sorted order
func (s *Service) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.list...)
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}
