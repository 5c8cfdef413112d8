// Package parser reads flashcards out of chapter notes and workbooks.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/chapterdeck/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	chapterPrefix  = "C:"
	headingPrefix  = "# "
	separator      = "---"
)

// maxLineSize bounds a single line of a card file.
const maxLineSize = 1 << 20

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingChapter
)

// Supported reports whether the file name has an extension ParsePath understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".xlsx":
		return true
	}
	return false
}

// ParsePath reads the cards of a markdown or workbook file, chosen by extension.
// Each card's Source is set to path.
func ParsePath(path string) ([]domain.Card, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseWorkbook(path)
	}
	return ParseFile(path)
}

// ParseFile reads a markdown file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cards, err := Parse(file)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].Source = path
	}
	return cards, nil
}

// Parse reads markdown from r and extracts all cards.
//
// A card starts at a "Q:" line and may carry "A:" and "C:" blocks; each block
// runs until the next prefix or a "---" separator. A "# " heading outside a
// card names the chapter of every following card without its own "C:" block.
// Inside a card a heading is ordinary content, so a chapter that follows a
// card needs a "---" before its heading.
func Parse(r io.Reader) ([]domain.Card, error) {
	p := &cardParser{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		p.feed(scanner.Text())
	}
	p.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return p.cards, nil
}

type cardParser struct {
	cards   []domain.Card
	card    domain.Card
	block   []string
	state   state
	chapter string
}

func (p *cardParser) feed(line string) {
	switch {
	case line == separator:
		p.finishCard()
	case p.state == seeking && strings.HasPrefix(line, headingPrefix):
		p.chapter = strings.TrimSpace(line[len(headingPrefix):])
	case strings.HasPrefix(line, questionPrefix):
		// A new question always starts a new card.
		p.finishCard()
		p.startBlock(readingQuestion, line[len(questionPrefix):])
	case strings.HasPrefix(line, answerPrefix):
		p.flushBlock()
		p.startBlock(readingAnswer, line[len(answerPrefix):])
	case strings.HasPrefix(line, chapterPrefix):
		p.flushBlock()
		p.startBlock(readingChapter, line[len(chapterPrefix):])
	case p.state != seeking:
		p.block = append(p.block, line)
	}
}

func (p *cardParser) startBlock(s state, rest string) {
	p.state = s
	p.block = append(p.block, strings.TrimPrefix(rest, " "))
}

// flushBlock stores the collected lines in the field of the current state.
func (p *cardParser) flushBlock() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.block, "\n"))
	switch p.state {
	case readingQuestion:
		p.card.Question = content
	case readingAnswer:
		p.card.Answer = content
	case readingChapter:
		p.card.Chapter = content
	}
	p.block = nil
}

func (p *cardParser) finishCard() {
	p.flushBlock()
	if p.card.Question != "" {
		if p.card.Chapter == "" {
			p.card.Chapter = p.chapter
		}
		p.cards = append(p.cards, p.card)
	}
	p.card = domain.Card{}
	p.state = seeking
}
