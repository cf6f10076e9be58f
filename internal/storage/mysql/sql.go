package mysql

// Rows without coordinates, or flagged outside the campus box by the
// geocoder, are never served.
const listRestroomsSQL = `
SELECT
  id,
  building_name,
  COALESCE(NULLIF(formatted_address, ''), address, ''),
  floor_or_area,
  rooms,
  latitude,
  longitude,
  restroom_type,
  multi_user_stalls,
  has_shower,
  staff_only_any,
  notes,
  natural_summary,
  maps_url,
  directions_url
FROM restrooms
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND within_campus_bbox = 1
ORDER BY id
`

const listMissingSummariesSQL = `
SELECT
  id,
  building_name,
  COALESCE(NULLIF(formatted_address, ''), address, ''),
  floor_or_area,
  rooms,
  latitude,
  longitude,
  restroom_type,
  multi_user_stalls,
  has_shower,
  staff_only_any,
  notes,
  natural_summary,
  maps_url,
  directions_url
FROM restrooms
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND (natural_summary IS NULL OR natural_summary = '')
  AND id > ?
ORDER BY id
LIMIT ?
`

const updateSummarySQL = `
UPDATE restrooms
SET natural_summary = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`
