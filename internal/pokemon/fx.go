package pokemon

import (
	"github.com/smallbiznis/pokedex/internal/pokemon/repository"
	"github.com/smallbiznis/pokedex/internal/pokemon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pokemon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
