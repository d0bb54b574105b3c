package format

// HittingFields is the allow-list of hitting stats shown by hstat
var HittingFields = []string{
	"gamesplayed", "groundouts", "airouts", "runs", "doubles", "triples",
	"homeruns", "strikeouts", "baseonballs", "intentionalwalks", "hits",
	"hitbypitch", "avg", "atbats", "obp", "slg", "ops", "caughtstealing",
	"stolenbases", "stolenbasepercentage", "plateappearances", "sacbunts",
	"sacflies", "babip", "groundoutstoairouts", "atbatsperhomerun",
}

// PitchingFields is the allow-list of pitching stats shown by pstat
var PitchingFields = []string{
	"gamesplayed", "gamesstarted", "groundouts", "airouts", "runs", "doubles",
	"triples", "homeruns", "strikeouts", "baseonballs", "hits", "hitbypitch",
	"avg", "atbats", "obp", "slg", "ops", "caughtstealing", "stolenbases",
	"stolenbasepercentage", "numberofpitches", "inningspitched", "whip",
	"strikepercentage", "wildpitches", "pickoffs", "groundoutstoairouts",
	"pitchesperinning", "strikeoutwalkratio", "strikeoutsper9inn",
	"walksper9inn", "hitsper9inn", "runsscoredper9", "homerunsper9",
	"sacbunts", "sacflies", "battersfaced",
}
