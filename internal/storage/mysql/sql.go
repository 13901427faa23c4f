package mysql

// Countries are stored as whole JSON documents; id and version live in their
// own columns and are not trusted from the document body.

const upsertCountrySQL = `
INSERT INTO countries (id, alpha2, doc, version)
VALUES (?, ?, ?, 0)
ON DUPLICATE KEY UPDATE
  alpha2  = VALUES(alpha2),
  doc     = VALUES(doc),
  version = 0
`

// Conditional on the version read by the caller; zero rows affected means
// someone else wrote first (or the row is gone).
const updateCountrySQL = `
UPDATE countries
SET doc = ?, version = version + 1
WHERE id = ? AND version = ?
`

const countryExistsSQL = `SELECT 1 FROM countries WHERE id = ?`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// '$.name[*].lang' yields the array of language codes present in name.
const langFilter = `JSON_CONTAINS(JSON_EXTRACT(doc, '$.name[*].lang'), JSON_QUOTE(?))`

// No ORDER BY beyond the clustered scan: callers get store order.
const listCountriesSQL = `
SELECT id, doc, version
FROM countries
WHERE ` + langFilter + `
LIMIT ?
`

const getCountrySQL = `
SELECT id, doc, version
FROM countries
WHERE id = ?
`

const getCountryByLangSQL = getCountrySQL + `  AND ` + langFilter + "\n"

const getCountryMetaSQL = `
SELECT
  id,
  COALESCE(JSON_UNQUOTE(JSON_EXTRACT(doc, '$.timezone')), ''),
  COALESCE(JSON_UNQUOTE(JSON_EXTRACT(doc, '$.currency')), '')
FROM countries
WHERE id = ?
`

const insertUserSQL = `
INSERT INTO users (id, login, password_hash, name, photo_url, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const getUserByLoginSQL = `
SELECT id, login, password_hash, name, photo_url, created_at
FROM users
WHERE login = ?
`
