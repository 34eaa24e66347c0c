package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/jakehl/goid"
	"go.uber.org/zap"
)

const timezone = "America/Sao_Paulo"

var saoPaulo = loadLocation()

func loadLocation() *time.Location {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		// Minimal images ship without tzdata; Brazil has had no DST since 2019.
		return time.FixedZone("BRT", -3*60*60)
	}
	return location
}

func GetUUId() string {
	return goid.NewV4UUID().String()
}

func LocationSaoPaulo() *time.Location {
	return saoPaulo
}

func GetCurrentTime() time.Time {
	return time.Now().In(saoPaulo)
}

// DaysRemaining is the whole number of days left until expiresAt, rounded
// up and never negative.
func DaysRemaining(expiresAt, now time.Time) int {
	left := expiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

type HttpRequestParams struct {
	Client   *http.Client
	Logger   *zap.Logger
	Uri      string
	Path     string
	Method   string
	Headers  map[string]string
	Body     interface{}
	Response interface{}
}

// HttpRequest sends a JSON request and decodes a JSON response into
// request.Response. The status code is returned for every completed round
// trip; a body that does not decode is only an error on 2xx answers.
func HttpRequest(ctx context.Context, request HttpRequestParams) (status int, err error) {
	client := request.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	var body io.Reader
	if request.Body != nil {
		jsonrequest, err := json.Marshal(request.Body)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(jsonrequest)
	}

	url := fmt.Sprintf("%v%v", request.Uri, request.Path)
	req, err := http.NewRequestWithContext(ctx, request.Method, url, body)
	if err != nil {
		return 0, err
	}
	for key, value := range request.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", `application/json`)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	responseByte, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if request.Logger != nil {
		request.Logger.Info("http_request_data",
			zap.String("uri", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("data", responseByte),
		)
	}

	if request.Response == nil || len(responseByte) == 0 {
		return resp.StatusCode, nil
	}
	if err = json.Unmarshal(responseByte, request.Response); err != nil && resp.StatusCode < 300 {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}
