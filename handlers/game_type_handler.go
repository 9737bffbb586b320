package handlers

import (
	"net/http"

	"github.com/Dosada05/party-tournament/services"
)

type GameTypeHandler struct {
	gameTypeService services.GameTypeService
}

func NewGameTypeHandler(gs services.GameTypeService) *GameTypeHandler {
	return &GameTypeHandler{gameTypeService: gs}
}

func (h *GameTypeHandler) CreateGameType(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateGameTypeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gameType, err := h.gameTypeService.CreateGameType(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"game_type": gameType})
}

func (h *GameTypeHandler) UpdateGameType(w http.ResponseWriter, r *http.Request) {
	gameTypeID, err := getIDFromURL(r, "gameTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateGameTypeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gameType, err := h.gameTypeService.UpdateGameType(r.Context(), gameTypeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"game_type": gameType})
}

func (h *GameTypeHandler) DeleteGameType(w http.ResponseWriter, r *http.Request) {
	gameTypeID, err := getIDFromURL(r, "gameTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.gameTypeService.DeleteGameType(r.Context(), gameTypeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameTypeHandler) AddStation(w http.ResponseWriter, r *http.Request) {
	gameTypeID, err := getIDFromURL(r, "gameTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.StationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	station, err := h.gameTypeService.AddStation(r.Context(), gameTypeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"station": station})
}

func (h *GameTypeHandler) RemoveStation(w http.ResponseWriter, r *http.Request) {
	gameTypeID, err := getIDFromURL(r, "gameTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stationID, err := getIDFromURL(r, "stationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.gameTypeService.RemoveStation(r.Context(), gameTypeID, stationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
