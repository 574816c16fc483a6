package db

const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	added_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS videos (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	is_short INTEGER DEFAULT 0,
	channel_name TEXT,
	channel_id TEXT,
	published_date TEXT,
	stored_at TEXT DEFAULT CURRENT_TIMESTAMP,
	duration INTEGER,
	view_count INTEGER
);

CREATE INDEX IF NOT EXISTS idx_videos_channel ON videos(channel_id);
CREATE INDEX IF NOT EXISTS idx_videos_published ON videos(published_date DESC);

CREATE TABLE IF NOT EXISTS watched (
	video_id TEXT PRIMARY KEY,
	watched_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS channel_views (
	channel_id TEXT PRIMARY KEY,
	last_viewed_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS migrations (
	name TEXT PRIMARY KEY,
	applied_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
