package state

import (
	"database/sql"
	"errors"
	"time"
)

// QueueTrack is a track in the saved queue.
type QueueTrack struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	TrackNumber int
	Duration    time.Duration
	Artwork     string
}

// QueueState is the saved queue.
type QueueState struct {
	CurrentIndex int
	RepeatMode   int
	Shuffle      bool
	// Position is the playback position within the current track.
	Position time.Duration
	Tracks   []QueueTrack
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var (
		currentIndex, repeatMode int
		shuffle                  bool
		positionMs               int64
	)
	row := db.QueryRow(`SELECT current_index, repeat_mode, shuffle, position_ms FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex, &repeatMode, &shuffle, &positionMs)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT path, title, artist, album_artist, album, genre, track_number, duration_ms, artwork
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []QueueTrack
	for rows.Next() {
		var t QueueTrack
		var artist, albumArtist, album, genre, artwork sql.NullString
		var trackNumber, durationMs sql.NullInt64

		err := rows.Scan(&t.Path, &t.Title, &artist, &albumArtist, &album, &genre,
			&trackNumber, &durationMs, &artwork)
		if err != nil {
			return nil, err
		}

		t.Artist = nullStringValue(artist)
		t.AlbumArtist = nullStringValue(albumArtist)
		t.Album = nullStringValue(album)
		t.Genre = nullStringValue(genre)
		t.TrackNumber = int(nullInt64Value(trackNumber))
		t.Duration = time.Duration(nullInt64Value(durationMs)) * time.Millisecond
		t.Artwork = nullStringValue(artwork)
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if currentIndex >= len(tracks) {
		currentIndex = -1
	}

	return &QueueState{
		CurrentIndex: currentIndex,
		RepeatMode:   repeatMode,
		Shuffle:      shuffle,
		Position:     time.Duration(positionMs) * time.Millisecond,
		Tracks:       tracks,
	}, nil
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return withTx(sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index, repeat_mode, shuffle, position_ms)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				position_ms = excluded.position_ms
		`, state.CurrentIndex, state.RepeatMode, state.Shuffle, state.Position.Milliseconds())
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks
			(position, path, title, artist, album_artist, album, genre, track_number, duration_ms, artwork)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			_, err = stmt.Exec(i, t.Path, t.Title,
				nullIfZero(t.Artist), nullIfZero(t.AlbumArtist), nullIfZero(t.Album), nullIfZero(t.Genre),
				nullIfZero(t.TrackNumber), nullIfZero(t.Duration.Milliseconds()), nullIfZero(t.Artwork))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
