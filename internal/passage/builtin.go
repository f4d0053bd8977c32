package passage

// Builtin holds the passages used when no passage file is configured.
var Builtin = []string{
	"Tonight, with the power out, I decided to rummage through the fifth drawer of my grandfather's desk and found sausage, bread and cornmeal.",
	"Programming is the process of creating a set of instructions that tell a computer how to perform a task. Programming can be done using many programming languages.",
	"Typing speed is usually measured in words per minute. The average person types between 38 and 40 words per minute, while professional typists often exceed 100.",
	"The internet is a global network of computers that work together to share information. It was created in the late 1960s and revolutionized communication.",
	"Artificial intelligence is intelligence demonstrated by machines, as opposed to the natural intelligence displayed by animals, including humans.",
	"Cloud computing is the on-demand availability of computer system resources, especially data storage and computing power, without direct active management by the user.",
	"Good user interfaces are essential for effective interaction between humans and computers. They should be intuitive, responsive and accessible to all users.",
	"Cybersecurity is the practice of protecting systems, networks and programs from digital attacks. These attacks usually aim to access or destroy sensitive information.",
	"Quantum computing is a type of computation that uses quantum mechanical phenomena, such as superposition and entanglement, to perform operations on data.",
	"Machine learning is a field of study that gives computers the ability to learn without being explicitly programmed. It is a subset of artificial intelligence.",
}
