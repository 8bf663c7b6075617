// internal/youtube/poster.go
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// CommentPoster creates top-level comments through the YouTube Data API
// commentThreads endpoint.
type CommentPoster struct {
	BaseURL string // defaults to the Google API host
}

type commentThread struct {
	Snippet struct {
		VideoID         string `json:"videoId"`
		TopLevelComment struct {
			Snippet struct {
				TextOriginal string `json:"textOriginal"`
			} `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Post creates one top-level comment on one video. Quota, permission and
// invalid-video responses all surface as posting errors carrying the provider
// message; hitting the call deadline surfaces as a timeout posting error.
func (p *CommentPoster) Post(ctx context.Context, client *resty.Client, videoID, comment string) error {
	var body commentThread
	body.Snippet.VideoID = videoID
	body.Snippet.TopLevelComment.Snippet.TextOriginal = comment

	var apiErr apiErrorBody
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("part", "snippet").
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetError(&apiErr).
		Post(p.baseURL() + "/commentThreads")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return appErrors.NewPostingTimeout(videoID, err)
		}
		return appErrors.NewPostingError(videoID, err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return appErrors.NewPostingError(videoID, fmt.Errorf("%s", msg))
	}
	return nil
}

func (p *CommentPoster) baseURL() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	return defaultBaseURL
}
