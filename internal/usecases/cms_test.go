package usecases

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	pkgerrors "media-pipeline/pkg/errors"
)

func sampleMetadata() []entities.AssetFileMetadata {
	return []entities.AssetFileMetadata{
		{
			Name:        "v_1280x720_2000.mp4",
			Duration:    90*time.Second + 500*time.Millisecond,
			AudioTracks: []entities.AudioTrack{{ID: 1}, {ID: 2}},
			VideoTracks: []entities.VideoTrack{{Bitrate: 2000, Width: 1280, Height: 720, DisplayAspectRatioNumerator: 16, DisplayAspectRatioDenominator: 9}},
		},
		{
			Name:        "v_1920x1080_4500.mp4",
			Duration:    91 * time.Second,
			AudioTracks: []entities.AudioTrack{{ID: 1}},
			VideoTracks: []entities.VideoTrack{{Bitrate: 4500, Width: 1920, Height: 1080, DisplayAspectRatioNumerator: 4, DisplayAspectRatioDenominator: 3}},
		},
		{
			Name:        "v_640x360_800.mp4",
			Duration:    90 * time.Second,
			VideoTracks: []entities.VideoTrack{{Bitrate: 800, Width: 640, Height: 360}},
		},
	}
}

func TestAggregateMetadata(t *testing.T) {
	ref := AggregateMetadata(sampleMetadata())

	want := dto.CMSReference{
		Duration:           "00:01:31",
		AudioTracksCount:   2,
		VideoBitratesCount: 3,
		Bitrate:            4500,
		Height:             1080,
		Width:              1920,
		AspectRatio:        "16:9",
	}
	if ref != want {
		t.Fatalf("AggregateMetadata = %+v, want %+v", ref, want)
	}
}

func TestAggregateMetadataAspectRatioFromFirstVideoTrack(t *testing.T) {
	files := sampleMetadata()
	files[0].VideoTracks[0].DisplayAspectRatioNumerator = 0
	files[0].VideoTracks[0].DisplayAspectRatioDenominator = 0

	if got := AggregateMetadata(files).AspectRatio; got != "0:0" {
		t.Fatalf("aspect ratio = %q, want the first track's %q", got, "0:0")
	}

	files = sampleMetadata()[1:]
	files = append([]entities.AssetFileMetadata{{Name: "audio_only.mp4", AudioTracks: []entities.AudioTrack{{ID: 1}}}}, files...)
	if got := AggregateMetadata(files).AspectRatio; got != "4:3" {
		t.Fatalf("aspect ratio = %q, want %q from the first variant carrying video", got, "4:3")
	}
}

func TestAggregateMetadataEmpty(t *testing.T) {
	if ref := AggregateMetadata(nil); ref != (dto.CMSReference{}) {
		t.Fatalf("AggregateMetadata(nil) = %+v, want zero value", ref)
	}
}

func TestNotifyCMSPublished(t *testing.T) {
	p := newTestPlatform()
	asset := p.AddAsset(entities.Asset{Name: "encoded", AlternateID: "video123"})
	p.Metadata[asset.ID] = sampleMetadata()
	if _, err := p.CreateLocator(context.Background(), asset.ID, entities.AccessRead, time.Hour); err != nil {
		t.Fatal(err)
	}
	cms := &recordingCMS{}
	svc := NewCMSService(p, cms, nopLogger())

	if err := svc.NotifyCMS(context.Background(), &dto.UpdateReferenceMessage{AssetID: asset.ID, Status: dto.WorkflowPublished}); err != nil {
		t.Fatalf("NotifyCMS: %v", err)
	}

	posted := cms.Posted()
	if len(posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(posted))
	}
	ref := posted[0]
	if ref.AssetID != asset.ID || ref.AssetAlternateID != "video123" {
		t.Fatalf("identity = %s/%s", ref.AssetID, ref.AssetAlternateID)
	}
	if ref.BaseStreamingURI != p.Locators[0].Path {
		t.Fatalf("baseStreamingUri = %q, want %q", ref.BaseStreamingURI, p.Locators[0].Path)
	}
	if ref.VideoBitratesCount != 3 {
		t.Fatalf("videoBitratesCount = %d", ref.VideoBitratesCount)
	}
}

func TestNotifyCMSIgnoresOtherStatuses(t *testing.T) {
	p := newTestPlatform()
	asset := p.AddAsset(entities.Asset{Name: "encoded"})
	p.Metadata[asset.ID] = sampleMetadata()
	cms := &recordingCMS{}
	svc := NewCMSService(p, cms, nopLogger())

	for _, status := range []dto.AssetWorkflowStatus{dto.WorkflowEncoding, dto.WorkflowContentProtectionAdded, dto.WorkflowError} {
		if err := svc.NotifyCMS(context.Background(), &dto.UpdateReferenceMessage{AssetID: asset.ID, Status: status}); err != nil {
			t.Fatalf("%s: %v", status, err)
		}
	}
	if n := len(cms.Posted()); n != 0 {
		t.Fatalf("posted = %d, want 0", n)
	}
}

func TestNotifyCMSMetadataNotReady(t *testing.T) {
	p := newTestPlatform()
	asset := p.AddAsset(entities.Asset{Name: "encoded"})
	cms := &recordingCMS{}
	svc := NewCMSService(p, cms, nopLogger())

	err := svc.NotifyCMS(context.Background(), &dto.UpdateReferenceMessage{AssetID: asset.ID, Status: dto.WorkflowPublished})
	if !stderrors.Is(err, pkgerrors.ErrMetadataNotReady) {
		t.Fatalf("err = %v, want ErrMetadataNotReady", err)
	}
	if n := len(cms.Posted()); n != 0 {
		t.Fatalf("posted = %d, want 0", n)
	}
}

func TestNotifyCMSNonSuccessIsNotRetried(t *testing.T) {
	p := newTestPlatform()
	asset := p.AddAsset(entities.Asset{Name: "encoded"})
	p.Metadata[asset.ID] = sampleMetadata()
	cms := &recordingCMS{status: 502}
	svc := NewCMSService(p, cms, nopLogger())

	if err := svc.NotifyCMS(context.Background(), &dto.UpdateReferenceMessage{AssetID: asset.ID, Status: dto.WorkflowPublished}); err != nil {
		t.Fatalf("NotifyCMS: %v", err)
	}
}

func TestNotifyCMSTransportErrorIsReturned(t *testing.T) {
	p := newTestPlatform()
	asset := p.AddAsset(entities.Asset{Name: "encoded"})
	p.Metadata[asset.ID] = sampleMetadata()
	cms := &recordingCMS{err: stderrors.New("connection refused")}
	svc := NewCMSService(p, cms, nopLogger())

	if err := svc.NotifyCMS(context.Background(), &dto.UpdateReferenceMessage{AssetID: asset.ID, Status: dto.WorkflowPublished}); err == nil {
		t.Fatalf("NotifyCMS err = nil, want transport error")
	}
}
