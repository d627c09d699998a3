package models

import "time"

// Video é o registro de um vídeo. A URL canônica é a identidade (índice único);
// depois de criado o registro não é alterado pelo crawler.
type Video struct {
	ID            string    `bson:"_id" json:"id"`
	URL           string    `bson:"url" json:"url"`
	Title         string    `bson:"title" json:"title"`
	URLSource     string    `bson:"url_source,omitempty" json:"url_source,omitempty"`
	Channel       string    `bson:"channel" json:"channel"`
	Likes         int64     `bson:"likes" json:"likes"`
	CommentsCount int64     `bson:"comments_count" json:"comments_count"`
	Saved         int64     `bson:"saved" json:"saved"`
	Shared        int64     `bson:"shared" json:"shared"`
	Hashtags      []string  `bson:"hashtags" json:"hashtags"`
	MediaObject   string    `bson:"media_object,omitempty" json:"media_object,omitempty"`
	DownloadError string    `bson:"download_error,omitempty" json:"download_error,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
