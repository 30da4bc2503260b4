// Package riot wraps the Riot Games REST API endpoints the crawler consumes.
package riot

// Account is the resolve-by-name response (account-v1).
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Match is the match-v5 detail payload.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata carries the match id and participant PUUIDs.
type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

// MatchInfo is the game-level portion of a match detail payload.
type MatchInfo struct {
	GameVersion  string        `json:"gameVersion"`
	GameCreation int64         `json:"gameCreation"`
	GameDuration int64         `json:"gameDuration"`
	GameID       int64         `json:"gameId"`
	GameMode     string        `json:"gameMode"`
	GameType     string        `json:"gameType"`
	Teams        []Team        `json:"teams"`
	Participants []Participant `json:"participants"`
}

// Team holds the per-side win flag.
type Team struct {
	TeamID int  `json:"teamId"`
	Win    bool `json:"win"`
}

// Participant is one of the ten per-player stat blocks in a match payload.
// The field set mirrors the participants table columns.
type Participant struct {
	PUUID        string `json:"puuid"`
	ChampionID   int    `json:"championId"`
	TeamID       int    `json:"teamId"`
	TeamPosition string `json:"teamPosition"`

	Assists                        int  `json:"assists"`
	BaronKills                     int  `json:"baronKills"`
	BountyLevel                    int  `json:"bountyLevel"`
	ChampExperience                int  `json:"champExperience"`
	ChampLevel                     int  `json:"champLevel"`
	ConsumablesPurchased           int  `json:"consumablesPurchased"`
	DamageDealtToBuildings         int  `json:"damageDealtToBuildings"`
	DamageDealtToObjectives        int  `json:"damageDealtToObjectives"`
	DamageDealtToTurrets           int  `json:"damageDealtToTurrets"`
	DamageSelfMitigated            int  `json:"damageSelfMitigated"`
	Deaths                         int  `json:"deaths"`
	DetectorWardsPlaced            int  `json:"detectorWardsPlaced"`
	DoubleKills                    int  `json:"doubleKills"`
	DragonKills                    int  `json:"dragonKills"`
	FirstBloodKill                 bool `json:"firstBloodKill"`
	GoldEarned                     int  `json:"goldEarned"`
	GoldSpent                      int  `json:"goldSpent"`
	InhibitorKills                 int  `json:"inhibitorKills"`
	KillingSprees                  int  `json:"killingSprees"`
	Kills                          int  `json:"kills"`
	LargestKillingSpree            int  `json:"largestKillingSpree"`
	LargestMultiKill               int  `json:"largestMultiKill"`
	LongestTimeSpentLiving         int  `json:"longestTimeSpentLiving"`
	MagicDamageDealt               int  `json:"magicDamageDealt"`
	MagicDamageDealtToChampions    int  `json:"magicDamageDealtToChampions"`
	MagicDamageTaken               int  `json:"magicDamageTaken"`
	NeutralMinionsKilled           int  `json:"neutralMinionsKilled"`
	ObjectivesStolen               int  `json:"objectivesStolen"`
	PentaKills                     int  `json:"pentaKills"`
	PhysicalDamageDealt            int  `json:"physicalDamageDealt"`
	PhysicalDamageDealtToChampions int  `json:"physicalDamageDealtToChampions"`
	PhysicalDamageTaken            int  `json:"physicalDamageTaken"`
	QuadraKills                    int  `json:"quadraKills"`
	TimeCCingOthers                int  `json:"timeCCingOthers"`
	TotalDamageDealt               int  `json:"totalDamageDealt"`
	TotalDamageDealtToChampions    int  `json:"totalDamageDealtToChampions"`
	TotalDamageTaken               int  `json:"totalDamageTaken"`
	TotalHeal                      int  `json:"totalHeal"`
	TotalMinionsKilled             int  `json:"totalMinionsKilled"`
	TripleKills                    int  `json:"tripleKills"`
	TrueDamageDealt                int  `json:"trueDamageDealt"`
	TurretKills                    int  `json:"turretKills"`
	VisionScore                    int  `json:"visionScore"`
	WardsKilled                    int  `json:"wardsKilled"`
	WardsPlaced                    int  `json:"wardsPlaced"`
	Win                            bool `json:"win"`
}

// MasteryRecord is one champion-mastery-v4 entry for a player.
type MasteryRecord struct {
	ChampionID     int    `json:"championId"`
	ChampionLevel  int    `json:"championLevel"`
	ChampionPoints int    `json:"championPoints"`
	PUUID          string `json:"puuid"`
}

// Champion is one entry from the Data Dragon static champion payload,
// flattened into the columns of the champions reference table.
type Champion struct {
	ChampionID int
	Name       string
	Tags       string
	Attack     int
	Defense    int
	Magic      int
	Difficulty int
}
