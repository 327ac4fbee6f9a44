package mysql

const upsertStateSQL = `
INSERT INTO app_state (name, payload)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  payload    = VALUES(payload),
  updated_at = CURRENT_TIMESTAMP
`

const getStateSQL = `SELECT payload FROM app_state WHERE name = ?`

const insertFallbackSQL = `
INSERT INTO fallback_log (location, kind, http_status, reason, created_at)
VALUES (?, ?, ?, ?, ?)
`

// newest first; id breaks ties within the same millisecond
const listFallbacksSQL = `
SELECT location, kind, http_status, reason, created_at
FROM fallback_log
ORDER BY created_at DESC, id DESC
LIMIT ?
`
