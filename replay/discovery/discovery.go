// Package discovery finds replay game IDs by crawling the public
// leaderboard pages.
package discovery

import (
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LeaderboardURLs []string
	RequestDelay    time.Duration // delay between HTTP requests to be polite
	MaxPlayers      int           // max players to check per leaderboard (0 = unlimited)
}

func DefaultConfig() Config {
	return Config{
		LeaderboardURLs: []string{
			"https://play.battlesnake.com/leaderboard/standard",
			"https://play.battlesnake.com/leaderboard/standard-duels",
		},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   100,
	}
}

// SeenSet answers whether a game ID was already collected on an earlier
// run. The store's append-only log satisfies it.
type SeenSet interface {
	Has(gameID string) bool
}

// Worker discovers game IDs from the Battlesnake leaderboard.
type Worker struct {
	config    Config
	client    *http.Client
	seen      SeenSet
	emitted   map[string]struct{}
	emittedMu sync.Mutex
	gameIDRe  *regexp.Regexp
	playerRe  *regexp.Regexp
}

func NewWorker(config Config, seen SeenSet) *Worker {
	return &Worker{
		config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		seen:     seen,
		emitted:  make(map[string]struct{}),
		gameIDRe: regexp.MustCompile(`/game/([a-f0-9-]+)`),
		// Matches /leaderboard/{arena}/{username}/stats for any arena.
		playerRe: regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`),
	}
}

// take claims a game ID for this crawl: false when it was emitted already
// or a previous run collected it.
func (w *Worker) take(gameID string) bool {
	w.emittedMu.Lock()
	defer w.emittedMu.Unlock()
	if _, ok := w.emitted[gameID]; ok {
		return false
	}
	if w.seen != nil && w.seen.Has(gameID) {
		return false
	}
	w.emitted[gameID] = struct{}{}
	return true
}

// Discover crawls every configured leaderboard and sends unseen game IDs to
// the channel.
func (w *Worker) Discover(gameIDChan chan<- string) error {
	log.Info().Msg("starting leaderboard crawl")

	totalNewGames := 0

	for _, leaderboardURL := range w.config.LeaderboardURLs {
		players, arenaType, err := w.getLeaderboardPlayers(leaderboardURL)
		if err != nil {
			log.Error().Err(err).Str("url", leaderboardURL).Msg("leaderboard fetch failed")
			continue
		}

		log.Info().Int("players", len(players)).Str("arena", arenaType).Msg("leaderboard scraped")

		if w.config.MaxPlayers > 0 && len(players) > w.config.MaxPlayers {
			players = players[:w.config.MaxPlayers]
		}

		newGames := 0
		for _, player := range players {
			gameIDs, err := w.getPlayerGames(player.statsURL)
			if err != nil {
				log.Error().Err(err).Str("player", player.username).Msg("player fetch failed")
				continue
			}

			for _, gameID := range gameIDs {
				if w.take(gameID) {
					gameIDChan <- gameID
					newGames++
				}
			}

			time.Sleep(w.config.RequestDelay)
		}

		log.Info().Str("arena", arenaType).Int("new_games", newGames).Msg("leaderboard finished")
		totalNewGames += newGames
	}

	log.Info().Int("new_games", totalNewGames).Msg("crawl complete")
	return nil
}

type playerInfo struct {
	username string
	statsURL string
}

func (w *Worker) getLeaderboardPlayers(leaderboardURL string) ([]playerInfo, string, error) {
	req, err := http.NewRequest("GET", leaderboardURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "SerpentReplayCollector/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", err
	}

	arenaType := "unknown"
	arenaRe := regexp.MustCompile(`/leaderboard/([^/]+)/?$`)
	if matches := arenaRe.FindStringSubmatch(leaderboardURL); len(matches) >= 2 {
		arenaType = matches[1]
	}

	var players []playerInfo
	seen := make(map[string]bool)

	doc.Find("a[href*='/leaderboard/']").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		matches := w.playerRe.FindStringSubmatch(href)
		if len(matches) >= 2 {
			username := matches[1]
			if !seen[username] {
				seen[username] = true
				players = append(players, playerInfo{
					username: username,
					statsURL: "https://play.battlesnake.com" + href,
				})
			}
		}
	})

	return players, arenaType, nil
}

func (w *Worker) getPlayerGames(statsURL string) ([]string, error) {
	req, err := http.NewRequest("GET", statsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "SerpentReplayCollector/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var gameIDs []string
	seen := make(map[string]bool)

	doc.Find("a[href*='/game/']").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		matches := w.gameIDRe.FindStringSubmatch(href)
		if len(matches) >= 2 {
			gameID := matches[1]
			if !seen[gameID] {
				seen[gameID] = true
				gameIDs = append(gameIDs, gameID)
			}
		}
	})

	return gameIDs, nil
}
