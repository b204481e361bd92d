package v1

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

const (
	fileField     = "file"
	deliveryField = "delivery"
	profileField  = "profile"

	maxFieldBytes = 64
)

type conversionRoutes struct {
	cu             entity.ConversionUsecase
	l              logger.Interface
	maxUploadBytes int64
}

type conversionResponse struct {
	Filename     string `json:"filename"      example:"meeting.mp3"`
	DownloadLink string `json:"download_link" example:"https://drive.google.com/uc?id=1AbC&export=download"`
}

func newConversionRoutes(handler *gin.RouterGroup, cu entity.ConversionUsecase, l logger.Interface, maxUploadBytes int64) {
	r := &conversionRoutes{cu, l, maxUploadBytes}

	handler.POST("/convert/", r.convert)
	handler.POST("/convert", r.convert)
}

// @Summary     Convert WAV to MP3
// @Description Transcodes an uploaded .wav file to MP3. With delivery=link the MP3 is
// @Description published to the configured folder and a public link is returned;
// @Description with delivery=file the MP3 is returned as the response body.
// @ID          convert
// @Tags        convert
// @Accept      multipart/form-data
// @Produce     json
// @Produce     audio/mpeg
// @Param       file     formData file   true  "WAV file, name must end in .wav"
// @Param       delivery query    string false "link or file" Enums(link, file)
// @Param       profile  query    string false "speech (16 kHz mono 64k) or standard" Enums(speech, standard)
// @Success     200 {object} conversionResponse
// @Failure     400 {object} response
// @Failure     413 {object} response
// @Failure     500 {object} response
// @Router      /convert/ [post]
func (r *conversionRoutes) convert(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "convert-api")
	defer span.End()

	if r.maxUploadBytes > 0 {
		if c.Request.ContentLength > r.maxUploadBytes {
			r.fail(c, &http.MaxBytesError{Limit: r.maxUploadBytes})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, r.maxUploadBytes)
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		r.fail(c, entity.NewRequestError(err, "multipart/form-data body required"))
		return
	}

	req := entity.ConversionRequest{
		Delivery: entity.Delivery(c.Query(deliveryField)),
		Profile:  entity.Profile(c.Query(profileField)),
	}

	file, err := nextFilePart(mr, &req)
	if err != nil {
		r.fail(c, err)
		return
	}
	defer file.Close()

	req.Filename = file.FileName()
	req.Body = file

	res, err := r.cu.Convert(ctx, req)
	if err != nil {
		span.RecordError(err)
		r.fail(c, err)
		return
	}

	if res.Audio == nil {
		c.JSON(http.StatusOK, conversionResponse{Filename: res.Filename, DownloadLink: res.DownloadLink})
		return
	}
	defer res.Audio.Close()

	c.Header("Content-Type", entity.Mp3ContentType)
	c.Header("Content-Disposition", contentDisposition(res.Filename))
	http.ServeContent(c.Writer, c.Request, res.Filename, time.Now(), res.Audio)
}

// nextFilePart skips ahead to the file part. Text fields seen on the way fill
// in delivery and profile unless the query string already set them.
func nextFilePart(mr *multipart.Reader, req *entity.ConversionRequest) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, entity.NewValidationError("file is required")
		}
		if err != nil {
			return nil, entity.NewRequestError(err, "malformed multipart body")
		}

		switch part.FormName() {
		case fileField:
			return part, nil
		case deliveryField:
			v, err := readField(part)
			if err != nil {
				return nil, err
			}
			if req.Delivery == "" {
				req.Delivery = entity.Delivery(v)
			}
		case profileField:
			v, err := readField(part)
			if err != nil {
				return nil, err
			}
			if req.Profile == "" {
				req.Profile = entity.Profile(v)
			}
		}
		part.Close()
	}
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", entity.NewRequestError(err, "malformed multipart body")
	}
	return strings.TrimSpace(string(b)), nil
}

func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func (r *conversionRoutes) fail(c *gin.Context, err error) {
	code, detail := statusFor(err)
	if code >= http.StatusInternalServerError {
		r.l.Error(errors.Wrap(err, "http - v1 - convert"))
	} else {
		r.l.Warn("http - v1 - convert: %s", detail)
	}
	errorResponse(c, code, detail)
}
