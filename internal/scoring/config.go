package scoring

// SCASCode is the questionnaire code the service serves.
const SCASCode = "SCAS_CHILD"

// SCASDefinition is the seed data for one SCAS questionnaire item.
type SCASDefinition struct {
	Number   int
	Prompt   string
	Scored   bool
	Subscale Subscale
}

// SCAS questionnaire metadata used by the seeder.
const (
	SCASTitle       = "SCAS Child (12-15)"
	SCASDescription = "44 ítems (38 puntúan + 6 relleno)"
	SCASMinAge      = 12
	SCASMaxAge      = 15
)

var scasPrompts = [44]string{
	"Me preocupan las cosas.",
	"Me da miedo la oscuridad.",
	"Cuando tengo un problema, siento una sensación extraña en el estómago.",
	"Tengo miedo.",
	"Me daría miedo estar solo en casa.",
	"Tengo miedo cuando tengo que hacer un examen.",
	"Tengo miedo si tengo que usar baños públicos.",
	"Me preocupa estar lejos de mis padres.",
	"Tengo miedo de hacer el ridículo delante de la gente.",
	"Me preocupa que me vaya mal en el colegio.",
	"Soy popular entre otros niños de mi edad.",
	"Me preocupa que le pase algo malo a alguien de mi familia.",
	"De repente siento que no puedo respirar cuando no hay ninguna razón para ello.",
	"Tengo que comprobar constantemente que he hecho las cosas bien (como que el interruptor esté apagado o que la puerta esté cerrada con llave).",
	"Tengo miedo si tengo que dormir solo.",
	"Tengo problemas para ir a la escuela por las mañanas porque me siento nervioso o asustado.",
	"Soy bueno en los deportes.",
	"Tengo miedo a los perros.",
	"No puedo sacarme los pensamientos malos o tontos de la cabeza.",
	"Cuando tengo un problema, mi corazón late muy rápido.",
	"De repente empiezo a sacudirme cuando no hay ninguna razón para ello.",
	"Me preocupa que me pase algo malo.",
	"Tengo miedo de ir al médico o al dentista.",
	"Cuando tengo un problema, me siento inestable.",
	"Tengo miedo de estar en lugares altos o en ascensores.",
	"Soy una buena persona.",
	"Tengo que pensar en cosas especiales para evitar que pasen cosas malas (como números o palabras).",
	"Tengo miedo si tengo que viajar en coche, autobús o tren.",
	"Me preocupa lo que piensen los demás de mí.",
	"Tengo miedo de estar en lugares concurridos (como centros comerciales, cines, autobuses, parques infantiles concurridos).",
	"Me siento feliz.",
	"De repente siento mucho miedo sin ninguna razón.",
	"Tengo miedo de los insectos o las arañas.",
	"De repente me mareo o me desmayo sin ninguna razón.",
	"Tengo miedo si tengo que hablar delante de mi clase.",
	"Mi corazón empieza a latir demasiado rápido sin ninguna razón.",
	"Me preocupa sentir miedo de repente cuando no hay nada que temer.",
	"Me gusto a mí mismo.",
	"Tengo miedo de estar en lugares pequeños y cerrados, como túneles o habitaciones pequeñas.",
	"Tengo que hacer algunas cosas una y otra vez (como lavarme las manos, limpiar o poner las cosas en cierto orden).",
	"Me molestan los pensamientos o imágenes malos o tontos en mi mente.",
	"Tengo que hacer algunas cosas de la manera correcta para evitar que pasen cosas malas.",
	"Estoy orgulloso de mi trabajo escolar.",
	"Me daría miedo si tuviera que quedarme fuera de casa toda la noche.",
}

// Filler items (11, 17, 26, 31, 38, 43) are positively worded and unscored.
var scasFillers = map[int]bool{11: true, 17: true, 26: true, 31: true, 38: true, 43: true}

var scasSubscaleItems = map[Subscale][]int{
	SubscaleGAD: {1, 3, 4, 20, 22, 24},
	SubscaleSOC: {6, 7, 9, 10, 29, 35},
	SubscaleOCD: {14, 19, 27, 40, 41, 42},
	SubscalePAA: {13, 21, 28, 30, 32, 34, 36, 37, 39},
	SubscalePHB: {2, 18, 23, 25, 33},
	SubscaleSAD: {5, 8, 12, 15, 16, 44},
}

// SCASItems returns the 44 item definitions in order.
func SCASItems() []SCASDefinition {
	subscaleOf := make(map[int]Subscale, 38)
	for sub, numbers := range scasSubscaleItems {
		for _, n := range numbers {
			subscaleOf[n] = sub
		}
	}

	defs := make([]SCASDefinition, len(scasPrompts))
	for i, prompt := range scasPrompts {
		n := i + 1
		defs[i] = SCASDefinition{
			Number:   n,
			Prompt:   prompt,
			Scored:   !scasFillers[n],
			Subscale: subscaleOf[n],
		}
	}
	return defs
}

// SCASQuestionnaire builds an in-memory questionnaire from the seed data.
// Item IDs equal item numbers; use the database-backed loader when IDs
// matter for persistence.
func SCASQuestionnaire() Questionnaire {
	defs := SCASItems()
	items := make([]Item, len(defs))
	for i, d := range defs {
		items[i] = Item{ID: int32(d.Number), Number: d.Number, Prompt: d.Prompt, Scored: d.Scored, Subscale: d.Subscale}
	}
	return NewQuestionnaire(0, SCASCode, SCASTitle, items)
}
