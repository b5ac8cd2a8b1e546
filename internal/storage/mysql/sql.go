package mysql

// The history store is insert-only: one searches row per completed
// search, n search_hotels rows hanging off it. Nothing updates or
// deletes, so plain inserts are enough for concurrent appends.

const insertSearchSQL = `
INSERT INTO searches (user_id, command, created_at)
VALUES (?, ?, ?)
`

const insertHotelSQL = `
INSERT INTO search_hotels (search_id, name, address)
VALUES (?, ?, ?)
`

// Searches with their hotels, oldest search first, hotels in insert
// order. LEFT JOIN keeps searches that produced no detailed hotels.
const listSearchesSQL = `
SELECT
  s.id,
  s.command,
  s.created_at,
  h.name,
  h.address
FROM searches s
LEFT JOIN search_hotels h ON h.search_id = s.id
WHERE s.user_id = ?
ORDER BY s.id, h.id
`
