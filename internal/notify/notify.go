package notify

import (
	"fmt"

	"github.com/slack-go/slack"

	"portionbot/internal/domain"
)

// PostRunSummary posts a one-line run summary to the configured channel.
// Notification is best-effort: callers log the error and move on.
func PostRunSummary(api *slack.Client, channelID string, rep *domain.RunReport, outputPath string) error {
	msg := FormatRunSummary(rep, outputPath)
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	return err
}

func FormatRunSummary(rep *domain.RunReport, outputPath string) string {
	if rep == nil || rep.TotalAnalyzed == 0 {
		return "Half-portion run complete: no new items classified"
	}
	return fmt.Sprintf("Half-portion run complete: analyzed=%d accepts=%d rejects=%d report=%s",
		rep.TotalAnalyzed, rep.TotalTrue, rep.TotalFalse, outputPath)
}
