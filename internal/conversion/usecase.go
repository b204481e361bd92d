package conversion

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
	"audio_conversion/pkg/scratch"
)

const (
	traceName = "conversion"

	inputName  = "input.wav"
	outputName = "output.mp3"

	// eventTimeout bounds how long a response may wait for room in the event queue.
	eventTimeout = time.Second
)

type Options struct {
	TempDir         string
	DefaultDelivery entity.Delivery
	DefaultProfile  entity.Profile
	// ConvertTimeout bounds the transcode step; zero means no limit.
	ConvertTimeout time.Duration
}

// Observer receives the outcome of every accepted request.
type Observer interface {
	ObserveConversion(delivery entity.Delivery, d time.Duration, err error)
}

type ConversionUsecase struct {
	converter entity.AudioConverter
	publisher entity.LinkPublisher
	events    entity.EventPublisher
	observer  Observer
	l         logger.Interface
	opts      Options
}

var _ entity.ConversionUsecase = (*ConversionUsecase)(nil)

// NewConversionUsecase -. events and observer may be nil.
func NewConversionUsecase(
	converter entity.AudioConverter,
	publisher entity.LinkPublisher,
	events entity.EventPublisher,
	observer Observer,
	l logger.Interface,
	opts Options,
) *ConversionUsecase {
	if opts.DefaultDelivery == "" {
		opts.DefaultDelivery = entity.DeliveryLink
	}
	if opts.DefaultProfile == "" {
		opts.DefaultProfile = entity.ProfileSpeech
	}

	return &ConversionUsecase{
		converter: converter,
		publisher: publisher,
		events:    events,
		observer:  observer,
		l:         l,
		opts:      opts,
	}
}

// Convert validates the name, stages the upload in a private scratch
// directory, transcodes it and delivers the MP3. The scratch directory is
// gone when Convert returns, except for file delivery where closing
// result.Audio removes it.
func (c *ConversionUsecase) Convert(ctx context.Context, req entity.ConversionRequest) (res *entity.ConversionResult, err error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Convert")
	defer span.End()

	delivery := req.Delivery
	if delivery == "" {
		delivery = c.opts.DefaultDelivery
	}
	if !delivery.Valid() {
		return nil, entity.NewValidationError("delivery must be 'link' or 'file'")
	}

	profile := req.Profile
	if profile == "" {
		profile = c.opts.DefaultProfile
	}
	if !profile.Valid() {
		return nil, entity.NewValidationError("profile must be 'speech' or 'standard'")
	}

	name, err := entity.ValidateFilename(req.Filename)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	outName := entity.ConvertedName(name)

	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.String("filename", name),
		attribute.String("delivery", string(delivery)),
		attribute.String("profile", string(profile)),
	)

	l := c.l.WithFields(map[string]interface{}{
		"request_id": requestID,
		"filename":   name,
		"delivery":   string(delivery),
		"profile":    string(profile),
	})

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			l.WithFields(map[string]interface{}{
				"stage": entity.StageOf(err),
				"kind":  string(entity.KindOf(err)),
			}).Error(err)
		} else {
			l.Info("converted %s to %s (%d bytes) in %s", name, outName, res.Size, elapsed)
		}
		if c.observer != nil {
			c.observer.ObserveConversion(delivery, elapsed, err)
		}
		c.publishEvent(requestID, outName, delivery, profile, elapsed, res, err)
	}()

	dir, err := scratch.New(c.opts.TempDir, requestID)
	if err != nil {
		return nil, err
	}

	keep := false
	defer func() {
		if keep {
			return
		}
		if cerr := dir.Close(); cerr != nil {
			l.Warn("failed to remove scratch dir %s: %v", dir.Root(), cerr)
		}
	}()

	if _, err := dir.Save(inputName, req.Body); err != nil {
		return nil, entity.NewRequestError(err, "failed to read upload")
	}

	if err := c.transcode(ctx, dir.Path(inputName), dir.Path(outputName), profile); err != nil {
		return nil, err
	}

	outPath := dir.Path(outputName)
	fi, err := os.Stat(outPath)
	if err != nil {
		return nil, entity.NewConversionError(errors.Wrap(err, "converted file missing"))
	}

	res = &entity.ConversionResult{Filename: outName, Size: fi.Size()}

	switch delivery {
	case entity.DeliveryFile:
		f, err := os.Open(outPath)
		if err != nil {
			return nil, entity.NewConversionError(errors.Wrap(err, "open converted file"))
		}
		res.Audio = &releasingFile{File: f, dir: dir}
		keep = true

	case entity.DeliveryLink:
		if c.publisher == nil {
			return nil, entity.NewConfigurationError(errors.New("no storage backend configured"))
		}
		link, err := c.publisher.Publish(ctx, outPath, outName)
		if err != nil {
			return nil, err
		}
		res.DownloadLink = link
	}

	return res, nil
}

func (c *ConversionUsecase) transcode(ctx context.Context, src, dst string, profile entity.Profile) error {
	if c.opts.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConvertTimeout)
		defer cancel()
	}

	_, err := c.converter.ConvertWavToMp3(ctx, src, dst, profile.Options())
	if err != nil && entity.KindOf(err) == entity.KindUnknown {
		err = entity.NewConversionError(err)
	}
	return err
}

// publishEvent runs after the request context may already be cancelled.
func (c *ConversionUsecase) publishEvent(
	requestID, filename string,
	delivery entity.Delivery,
	profile entity.Profile,
	elapsed time.Duration,
	res *entity.ConversionResult,
	err error,
) {
	if c.events == nil {
		return
	}

	ev := entity.ConversionEvent{
		RequestID:  requestID,
		Filename:   filename,
		Status:     entity.StatusCompleted,
		Delivery:   delivery,
		Profile:    profile,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		ev.Status = entity.StatusFailed
		ev.Kind = entity.KindOf(err)
		ev.Error = err.Error()
	} else if res != nil {
		ev.DownloadLink = res.DownloadLink
		ev.Size = res.Size
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if perr := c.events.PublishConversionEvent(ctx, ev); perr != nil {
		c.l.Warn("conversion event for %s not published: %v", requestID, perr)
	}
}

// releasingFile removes the scratch directory once the caller is done reading.
type releasingFile struct {
	*os.File
	dir  *scratch.Dir
	once sync.Once
}

var _ io.ReadSeekCloser = (*releasingFile)(nil)

func (f *releasingFile) Close() error {
	var err error
	f.once.Do(func() {
		err = f.File.Close()
		if rerr := f.dir.Close(); err == nil {
			err = rerr
		}
	})
	return err
}
