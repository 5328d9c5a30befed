package handlers

import (
	"math/big"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apimodels "github.com/spicelanes/game-server/api/models"
	"github.com/spicelanes/game-server/api/services"
	"github.com/spicelanes/game-server/api/utils"
	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/spicelanes/game-server/spicelanes/game"
	"github.com/spicelanes/game-server/spicelanes/worldapp"
)

// WebApp bundles every dependency the HTTP layer needs.
type WebApp struct {
	Engine    *game.Engine
	ShipIndex *services.ShipIndex
	Verifier  *worldapp.Verifier
	Payments  *worldapp.Payments
	Version   string
	Commit    string
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// parseAmount parses a decimal string into a big integer. Empty is nil.
func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, true
	}
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": webApp.Version,
			"commit":  webApp.Commit,
		})
	}
}

// PlayerState returns the aggregate player view for one address.
func PlayerState(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := webApp.Engine.GetState(c.Context(), c.Params("address"))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, state, "")
	}
}

func Registered(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		registered, err := webApp.Engine.IsRegistered(c.Context(), c.Params("address"))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"registered": registered}, "")
	}
}

func Planets(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		planets, err := webApp.Engine.Planets(c.Context())
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, planets, "")
	}
}

func PlanetDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "invalid planet id", nil)
		}
		planet, err := webApp.Engine.Planet(c.Context(), id)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, planet, "")
	}
}

// TravelCost prices the route between two planets.
func TravelCost(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err1 := parseInt64(c.Query("from"))
		to, err2 := parseInt64(c.Query("to"))
		if err1 != nil || err2 != nil {
			return utils.SendBadRequest(c, "from and to planet ids are required", nil)
		}
		cost, ok := game.TravelCostBetween(from, to)
		if !ok {
			return utils.SendGameError(c, game.ErrUnknownPlanet)
		}
		return utils.SendSuccess(c, fiber.Map{
			"spice_cost":   cost.SpiceCost,
			"time_seconds": int64(cost.TimeCost.Seconds()),
		}, "")
	}
}

// ShipsByOwner returns the whole fleet with attributes in one call.
func ShipsByOwner(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ships, err := webApp.ShipIndex.GetByOwner(c.Context(), c.Params("address"))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, ships, "")
	}
}

func ShipDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "invalid ship id", nil)
		}
		ship, err := webApp.ShipIndex.Get(c.Context(), id)
		if err != nil {
			return utils.SendNotFound(c, "ship not found")
		}
		return utils.SendSuccess(c, ship, "")
	}
}

func ShipSearch(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		ships, err := webApp.ShipIndex.Search(c.Context(), c.Query("q"), limit)
		if err != nil {
			return utils.SendInternalServerError(c, "ship search failed")
		}
		return utils.SendSuccess(c, ships, "")
	}
}

// ShipPrices lists every purchasable class with attributes and price.
func ShipPrices(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		classes := make([]fiber.Map, 0, len(game.AllClasses()))
		for _, class := range game.AllClasses() {
			spec := game.SpecOf(class)
			classes = append(classes, fiber.Map{
				"class":          int(class),
				"name":           spec.Name,
				"cargo_capacity": spec.CargoCapacity,
				"spice_capacity": spec.SpiceCapacity,
				"speed":          spec.Speed,
				"mining_power":   spec.MiningPower,
				"price":          game.ShipPrice(class).String(),
			})
		}
		return utils.SendSuccess(c, classes, "")
	}
}

func MiningInfo(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, fiber.Map{
			"fee":              game.MiningFee().String(),
			"cooldown_seconds": int64(game.MiningCooldown.Seconds()),
		}, "")
	}
}

// Quote prices a swap without executing it.
func Quote(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		planetID, err := parseInt64(c.Query("planet_id"))
		if err != nil {
			return utils.SendBadRequest(c, "planet_id is required", nil)
		}
		resource := c.QueryInt("resource", -1)
		amountIn, ok := parseAmount(c.Query("amount_in"))
		if !ok || amountIn == nil {
			return utils.SendBadRequest(c, "amount_in must be a decimal string", nil)
		}
		toCredits := c.QueryBool("resource_to_credits", true)

		out, err := webApp.Engine.Quote(c.Context(), planetID, models.Resource(resource), toCredits, amountIn)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"amount_out": out.String()}, "")
	}
}

// Onboard registers a player.
func Onboard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.OnboardRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address and ship_name are required", nil)
		}
		state, err := webApp.Engine.Onboard(c.Context(), req.Address, req.ShipName)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, state, "player registered")
	}
}

func StartTravel(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.TravelRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address and planet_id are required", nil)
		}
		state, err := webApp.Engine.StartTravel(c.Context(), req.Address, req.PlanetID)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, state, "travel started")
	}
}

func CompleteTravel(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.CompleteTravelRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address is required", nil)
		}
		state, err := webApp.Engine.CompleteTravel(c.Context(), req.Address)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, state, "travel completed")
	}
}

func BuyShip(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.BuyShipRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address, name and class are required", nil)
		}
		ship, err := webApp.Engine.BuyShip(c.Context(), req.Address, req.Name, game.ShipClass(req.Class))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, ship, "ship purchased")
	}
}

func ActivateShip(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.ActivateShipRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address and ship_id are required", nil)
		}
		if err := webApp.Engine.SetActiveShip(c.Context(), req.Address, req.ShipID); err != nil {
			return utils.SendGameError(c, err)
		}
		webApp.ShipIndex.Invalidate(req.ShipID)
		return utils.SendSuccess(c, fiber.Map{"active_ship_id": req.ShipID}, "active ship updated")
	}
}

func RefuelShip(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.RefuelRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address, ship_id and amount are required", nil)
		}
		ship, err := webApp.Engine.RefuelShip(c.Context(), req.Address, req.ShipID, req.Amount)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		webApp.ShipIndex.Invalidate(req.ShipID)
		return utils.SendSuccess(c, ship, "ship refueled")
	}
}

func Mine(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.MineRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address and fee are required", nil)
		}
		fee, ok := parseAmount(req.Fee)
		if !ok {
			return utils.SendBadRequest(c, "fee must be a decimal string", nil)
		}
		result, err := webApp.Engine.Mine(c.Context(), req.Address, fee)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, result, "mining completed")
	}
}

func ExecuteTrade(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.TradeRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address and trade parameters are required", nil)
		}
		amountIn, ok := parseAmount(req.AmountIn)
		if !ok || amountIn == nil {
			return utils.SendBadRequest(c, "amount_in must be a decimal string", nil)
		}
		minOut, ok := parseAmount(req.MinAmountOut)
		if !ok {
			return utils.SendBadRequest(c, "min_amount_out must be a decimal string", nil)
		}

		trade := game.TradeRequest{
			Account:           req.Address,
			PlanetID:          req.PlanetID,
			Resource:          models.Resource(req.Resource),
			ResourceToCredits: req.ResourceToCredits,
			AmountIn:          models.WrapBigInt(amountIn),
		}
		if minOut != nil {
			trade.MinAmountOut = models.WrapBigInt(minOut)
		}

		result, err := webApp.Engine.ExecuteTrade(c.Context(), trade)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, result, "trade executed")
	}
}
