package postgres

// schemaDDL creates the crawler's tables. Statements are applied one at a
// time and are safe to re-run.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS matches (
	match_id      TEXT PRIMARY KEY,
	game_version  TEXT NOT NULL,
	game_creation BIGINT NOT NULL,
	game_duration BIGINT NOT NULL,
	game_id       BIGINT NOT NULL,
	winner        INT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS participants (
	match_id                           TEXT NOT NULL REFERENCES matches(match_id),
	puuid                              TEXT NOT NULL,
	champion_id                        INT NOT NULL,
	team_id                            INT NOT NULL,
	team_position                      TEXT NOT NULL,
	assists                            INT NOT NULL,
	baron_kills                        INT NOT NULL,
	bounty_level                       INT NOT NULL,
	champ_experience                   INT NOT NULL,
	champ_level                        INT NOT NULL,
	consumables_purchased              INT NOT NULL,
	damage_dealt_to_buildings          INT NOT NULL,
	damage_dealt_to_objectives         INT NOT NULL,
	damage_dealt_to_turrets            INT NOT NULL,
	damage_self_mitigated              INT NOT NULL,
	deaths                             INT NOT NULL,
	detector_wards_placed              INT NOT NULL,
	double_kills                       INT NOT NULL,
	dragon_kills                       INT NOT NULL,
	first_blood_kill                   BOOLEAN NOT NULL,
	gold_earned                        INT NOT NULL,
	gold_spent                         INT NOT NULL,
	inhibitor_kills                    INT NOT NULL,
	killing_sprees                     INT NOT NULL,
	kills                              INT NOT NULL,
	largest_killing_spree              INT NOT NULL,
	largest_multi_kill                 INT NOT NULL,
	longest_time_spent_living          INT NOT NULL,
	magic_damage_dealt                 INT NOT NULL,
	magic_damage_dealt_to_champions    INT NOT NULL,
	magic_damage_taken                 INT NOT NULL,
	neutral_minions_killed             INT NOT NULL,
	objectives_stolen                  INT NOT NULL,
	penta_kills                        INT NOT NULL,
	physical_damage_dealt              INT NOT NULL,
	physical_damage_dealt_to_champions INT NOT NULL,
	physical_damage_taken              INT NOT NULL,
	quadra_kills                       INT NOT NULL,
	time_ccing_others                  INT NOT NULL,
	total_damage_dealt                 INT NOT NULL,
	total_damage_dealt_to_champions    INT NOT NULL,
	total_damage_taken                 INT NOT NULL,
	total_heal                         INT NOT NULL,
	total_minions_killed               INT NOT NULL,
	triple_kills                       INT NOT NULL,
	true_damage_dealt                  INT NOT NULL,
	turret_kills                       INT NOT NULL,
	vision_score                       INT NOT NULL,
	wards_killed                       INT NOT NULL,
	wards_placed                       INT NOT NULL,
	win                                BOOLEAN NOT NULL,
	PRIMARY KEY (match_id, puuid)
)`,
	`CREATE TABLE IF NOT EXISTS champion_mastery (
	puuid           TEXT NOT NULL,
	champion_id     INT NOT NULL,
	champion_level  INT NOT NULL,
	champion_points INT NOT NULL,
	PRIMARY KEY (puuid, champion_id)
)`,
	`CREATE TABLE IF NOT EXISTS seen_players (
	puuid TEXT PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS champions (
	champion_id INT PRIMARY KEY,
	name        TEXT NOT NULL,
	tags        TEXT NOT NULL,
	attack      INT NOT NULL,
	defense     INT NOT NULL,
	magic       INT NOT NULL,
	difficulty  INT NOT NULL
)`,
}
