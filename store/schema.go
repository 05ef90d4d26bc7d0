package store

// Schema creates the tables of a transaction store. Decimals are stored as text
// to keep them exact; dates as RFC 3339 UTC text, which sorts chronologically.
const Schema = `
CREATE TABLE IF NOT EXISTS import_batches (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	imported_at DATETIME NOT NULL,
	inserted INTEGER NOT NULL,
	duplicates INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	hash TEXT NOT NULL UNIQUE,
	batch_id TEXT NOT NULL REFERENCES import_batches(id),
	symbol TEXT NOT NULL,
	type TEXT NOT NULL,
	date TEXT NOT NULL,
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	fees TEXT NOT NULL,
	amount TEXT NOT NULL,
	broker TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_symbol_date ON transactions(symbol, date, id);
`
