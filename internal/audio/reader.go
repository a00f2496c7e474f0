package audio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/simonhull/audiometa"

	"github.com/handiism/audio-info-updater/internal/model"
)

// ReadTags reads the metadata already embedded in an audio file.
//
// Container-independent fields come from audiometa. For MP3 files the
// album artist, year and genre are completed from the ID3v2 frames.
func ReadTags(ctx context.Context, path string) (*model.TagSet, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	tags := &model.TagSet{
		Title:    file.Tags.Title,
		Artist:   file.Tags.Artist,
		Album:    file.Tags.Album,
		Track:    file.Tags.TrackNumber,
		Duration: model.FromTime(file.Audio.Duration),
	}

	if IsMP3(path) {
		if err := readID3Frames(path, tags); err != nil {
			return tags, err
		}
	}
	return tags, nil
}

func readID3Frames(path string, tags *model.TagSet) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to read id3 frames: %w", err)
	}
	defer tag.Close()

	tags.AlbumArtist = tag.GetTextFrame("TPE2").Text
	tags.Genre = tag.GetTextFrame("TCON").Text
	year := tag.GetTextFrame("TYER").Text
	if year == "" {
		year = tag.GetTextFrame("TDRC").Text
	}
	if len(year) >= 4 {
		if n, err := strconv.Atoi(year[:4]); err == nil {
			tags.Year = n
		}
	}
	return nil
}
