package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/physics"
)

// ListSurfaces returns the landing surfaces and their coefficients.
func ListSurfaces(c *gin.Context) {
	surfaces := make([]gin.H, 0, 4)
	for _, s := range physics.Surfaces() {
		surfaces = append(surfaces, gin.H{"name": s, "params": physics.SurfaceFor(s)})
	}
	c.JSON(http.StatusOK, gin.H{"surfaces": surfaces})
}

// GetConditions returns the server's current course and simulation settings
// together with the derived air properties.
func GetConditions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cond := cfg.Conditions()
		density, viscosity := physics.EnvironmentParams(cond.Altitude, cond.Temperature, physics.ParseUnits(cond.EnvUnits))
		c.JSON(http.StatusOK, gin.H{
			"conditions":    cond,
			"air_density":   density,
			"air_viscosity": viscosity,
		})
	}
}
