package postgres

import (
	"database/sql"
	"time"

	"github.com/mba-league/mbabot/internal/domain/proposal"
)

type proposalTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	GuildID        string         `db:"guild_id"`
	Kind           string         `db:"kind"`
	ProposerID     string         `db:"proposer_id"`
	CreatedAt      time.Time      `db:"created_at"`
	ExpiresAt      time.Time      `db:"expires_at"`
	OfferPlayerID  sql.NullString `db:"offer_player_id"`
	OfferTeamID    sql.NullString `db:"offer_team_id"`
	TradeFromTeam  sql.NullString `db:"trade_from_team_id"`
	TradeToTeam    sql.NullString `db:"trade_to_team_id"`
	TradeGivesID   sql.NullString `db:"trade_gives_id"`
	TradeGetsID    sql.NullString `db:"trade_gets_id"`
	GameHomeTeamID sql.NullString `db:"game_home_team_id"`
	GameAwayTeamID sql.NullString `db:"game_away_team_id"`
	GameStartsAt   sql.NullTime   `db:"game_starts_at"`
	ReportPlayerID sql.NullString `db:"report_player_id"`
	ReportTeamID   sql.NullString `db:"report_team_id"`
}

type proposalInsertModel struct {
	PublicID       string         `db:"public_id"`
	GuildID        string         `db:"guild_id"`
	Kind           string         `db:"kind"`
	ProposerID     string         `db:"proposer_id"`
	CreatedAt      time.Time      `db:"created_at"`
	ExpiresAt      time.Time      `db:"expires_at"`
	OfferPlayerID  sql.NullString `db:"offer_player_id"`
	OfferTeamID    sql.NullString `db:"offer_team_id"`
	TradeFromTeam  sql.NullString `db:"trade_from_team_id"`
	TradeToTeam    sql.NullString `db:"trade_to_team_id"`
	TradeGivesID   sql.NullString `db:"trade_gives_id"`
	TradeGetsID    sql.NullString `db:"trade_gets_id"`
	GameHomeTeamID sql.NullString `db:"game_home_team_id"`
	GameAwayTeamID sql.NullString `db:"game_away_team_id"`
	GameStartsAt   sql.NullTime   `db:"game_starts_at"`
	ReportPlayerID sql.NullString `db:"report_player_id"`
	ReportTeamID   sql.NullString `db:"report_team_id"`
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func proposalFromRow(row proposalTableModel) proposal.Proposal {
	item := proposal.Proposal{
		ID:         row.PublicID,
		GuildID:    row.GuildID,
		Kind:       proposal.Kind(row.Kind),
		ProposerID: row.ProposerID,
		CreatedAt:  row.CreatedAt,
		ExpiresAt:  row.ExpiresAt,
	}

	switch item.Kind {
	case proposal.KindOffer:
		item.Offer = &proposal.OfferPayload{
			PlayerID: row.OfferPlayerID.String,
			TeamID:   row.OfferTeamID.String,
		}
	case proposal.KindTrade:
		item.Trade = &proposal.TradePayload{
			FromTeamID: row.TradeFromTeam.String,
			ToTeamID:   row.TradeToTeam.String,
			GivesID:    row.TradeGivesID.String,
			GetsID:     row.TradeGetsID.String,
		}
	case proposal.KindGametime:
		item.Gametime = &proposal.GametimePayload{
			HomeTeamID: row.GameHomeTeamID.String,
			AwayTeamID: row.GameAwayTeamID.String,
			StartsAt:   row.GameStartsAt.Time,
		}
	case proposal.KindForceSign:
		item.ForceSign = &proposal.ForceSignPayload{
			PlayerID: row.ReportPlayerID.String,
			TeamID:   row.ReportTeamID.String,
		}
	}

	return item
}

func proposalToInsertModel(item proposal.Proposal) proposalInsertModel {
	insertModel := proposalInsertModel{
		PublicID:   item.ID,
		GuildID:    item.GuildID,
		Kind:       string(item.Kind),
		ProposerID: item.ProposerID,
		CreatedAt:  item.CreatedAt,
		ExpiresAt:  item.ExpiresAt,
	}

	if item.Offer != nil {
		insertModel.OfferPlayerID = nullString(item.Offer.PlayerID)
		insertModel.OfferTeamID = nullString(item.Offer.TeamID)
	}
	if item.Trade != nil {
		insertModel.TradeFromTeam = nullString(item.Trade.FromTeamID)
		insertModel.TradeToTeam = nullString(item.Trade.ToTeamID)
		insertModel.TradeGivesID = nullString(item.Trade.GivesID)
		insertModel.TradeGetsID = nullString(item.Trade.GetsID)
	}
	if item.Gametime != nil {
		insertModel.GameHomeTeamID = nullString(item.Gametime.HomeTeamID)
		insertModel.GameAwayTeamID = nullString(item.Gametime.AwayTeamID)
		insertModel.GameStartsAt = sql.NullTime{Time: item.Gametime.StartsAt, Valid: true}
	}
	if item.ForceSign != nil {
		insertModel.ReportPlayerID = nullString(item.ForceSign.PlayerID)
		insertModel.ReportTeamID = nullString(item.ForceSign.TeamID)
	}

	return insertModel
}
