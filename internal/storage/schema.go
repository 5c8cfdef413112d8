package storage

const schema = `
-- The 'cards' table stores the flashcards of every deck.
CREATE TABLE IF NOT EXISTS cards (
    deck TEXT NOT NULL,
    id TEXT NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL DEFAULT '',
    chapter TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (deck, id)
);

-- The 'study_records' table holds the scheduling state of reviewed cards.
-- Rows outlive their cards so re-importing a card restores its history.
CREATE TABLE IF NOT EXISTS study_records (
    deck TEXT NOT NULL,
    card_id TEXT NOT NULL,
    last_reviewed DATETIME,
    next_review DATETIME NOT NULL,
    ease REAL NOT NULL DEFAULT 2.5,
    interval_days INTEGER NOT NULL DEFAULT 0,
    review_count INTEGER NOT NULL DEFAULT 0,
    consecutive_correct INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (deck, card_id)
);

-- The 'review_logs' table is an append-only history of reviews.
CREATE TABLE IF NOT EXISTS review_logs (
    id TEXT PRIMARY KEY,
    deck TEXT NOT NULL,
    card_id TEXT NOT NULL,
    rating TEXT NOT NULL,
    quality INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    ease REAL NOT NULL,
    reviewed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS review_logs_card ON review_logs (deck, card_id, reviewed_at);
`
