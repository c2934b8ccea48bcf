package database

const schema = `
CREATE TABLE IF NOT EXISTS send_drafts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS failed_emails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT,
    channel_id TEXT NOT NULL,
    from_addr TEXT,
    subject TEXT,
    error TEXT NOT NULL,
    error_code TEXT,
    attempts INTEGER NOT NULL,
    failed_at DATETIME NOT NULL,
    payload TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_drafts_channel ON send_drafts(team_id, channel_id);
CREATE INDEX IF NOT EXISTS idx_drafts_created ON send_drafts(created_at);
CREATE INDEX IF NOT EXISTS idx_failed_channel ON failed_emails(channel_id);
CREATE INDEX IF NOT EXISTS idx_failed_at ON failed_emails(failed_at);
`
