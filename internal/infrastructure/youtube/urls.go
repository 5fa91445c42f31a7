package youtube

import "net/url"

const baseURL = "https://www.youtube.com"

// VideoURL returns the watch page URL of a video.
func VideoURL(videoID string) string {
	return baseURL + "/watch?" + url.Values{"v": {videoID}}.Encode()
}

// PlaylistURL returns the public page URL of a playlist.
func PlaylistURL(playlistID string) string {
	return baseURL + "/playlist?" + url.Values{"list": {playlistID}}.Encode()
}

// ChannelURL returns the public page URL of a channel.
func ChannelURL(channelID string) string {
	return baseURL + "/channel/" + url.PathEscape(channelID)
}
